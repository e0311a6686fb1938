// Package motion implements the motion supervisor: it decodes control
// packets, applies the steering/drive/camera policy to the actuator, halts
// the drive when the control link goes quiet, and returns the robot to the
// neutral pose on shutdown.
package motion

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/shutdown"
	"github.com/open-teleop/rover/pkg/transport"
)

// Actuator operation names used in errors and logs.
const (
	OpSteer    = "set_steering_angle"
	OpForward  = "drive_forward"
	OpBackward = "drive_backward"
	OpStop     = "stop"
	OpPan      = "set_camera_pan"
	OpTilt     = "set_camera_tilt"
)

const minReceiveWait = time.Millisecond

// LinkState classifies the control link on each iteration.
type LinkState int

const (
	StateRunning LinkState = iota
	StateStale
)

func (s LinkState) String() string {
	if s == StateStale {
		return "STALE"
	}
	return "RUNNING"
}

// ActuatorError reports a failed actuator call.
type ActuatorError struct {
	Op  string
	Err error
}

func (e *ActuatorError) Error() string {
	return fmt.Sprintf("actuator %s failed: %v", e.Op, e.Err)
}

func (e *ActuatorError) Unwrap() error {
	return e.Err
}

// actuatorState is the last angle actually sent to each actuator.
// Only the supervisor goroutine touches it.
type actuatorState struct {
	lastSteeringAngle float64
	lastCameraYaw     *float64
	lastCameraPitch   *float64
}

// Supervisor owns the actuator. All actuator calls, including the neutral
// reset, happen on the goroutine running Run (or, if Run never started, on
// the caller of Neutralize).
type Supervisor struct {
	actuator hardware.Actuator
	policy   Policy
	stop     *shutdown.Coordinator
	logger   customlog.Logger
	now      func() time.Time

	state        actuatorState
	link         LinkState
	lastPacketAt time.Time
	watchdogRef  time.Time
	driving      string

	neutralOnce sync.Once
	neutralized atomic.Bool

	packets        atomic.Uint64
	decodeErrors   atomic.Uint64
	actuatorErrors atomic.Uint64
	watchdogStops  atomic.Uint64

	snapMu sync.RWMutex
	snap   Snapshot
}

// NewSupervisor creates a Supervisor driving actuator. Create it as soon
// as the actuator exists so every exit path can call Neutralize.
func NewSupervisor(
	actuator hardware.Actuator,
	policy Policy,
	stop *shutdown.Coordinator,
	logger customlog.Logger,
) *Supervisor {
	s := &Supervisor{
		actuator: actuator,
		policy:   policy,
		stop:     stop,
		logger:   logger.WithField("component", "motion"),
		now:      time.Now,
		link:     StateRunning,
		driving:  DriveStopped,
	}
	s.publish()
	return s
}

// Run processes packets from source until stop is requested, then performs
// the neutral reset before returning.
func (s *Supervisor) Run(source transport.PacketSource) {
	defer s.Neutralize()

	s.logger.Infof("Motion supervisor started (timeout=%v, poll=%v)", s.policy.ControlTimeout, s.policy.PollInterval)
	buf := make([]byte, protocol.MaxPacketSize)
	s.watchdogRef = s.now()

	for !s.stop.IsStopRequested() {
		n, addr, err := source.Receive(buf, s.receiveWait())
		if s.stop.IsStopRequested() {
			break
		}

		switch {
		case err == nil:
			s.logger.Debugf("Packet from %v (%d bytes)", addr, n)
			if applyErr := s.HandlePacket(buf[:n]); applyErr != nil {
				s.logger.Errorf("Command not fully applied: %v", applyErr)
			}
		case errors.Is(err, transport.ErrTimeout):
			s.CheckWatchdog()
		case errors.Is(err, transport.ErrClosed):
			s.logger.Errorf("Control socket closed, requesting stop")
			s.stop.RequestStop("motion control socket closed")
		default:
			s.logger.Errorf("Error receiving control packet: %v", err)
			s.CheckWatchdog()
			s.stop.Wait(s.policy.PollInterval)
		}
		s.publish()
	}

	s.logger.Infof("Motion supervisor stopping")
}

// receiveWait bounds the next read by the poll interval and the time left
// in the watchdog window.
func (s *Supervisor) receiveWait() time.Duration {
	wait := s.policy.PollInterval
	remaining := s.policy.ControlTimeout - s.now().Sub(s.watchdogRef)
	if wait <= 0 || remaining < wait {
		wait = remaining
	}
	if wait < minReceiveWait {
		wait = minReceiveWait
	}
	return wait
}

// HandlePacket records liveness, decodes buf and applies the command.
// Malformed packets are discarded but still count as link activity.
func (s *Supervisor) HandlePacket(buf []byte) error {
	now := s.now()
	s.lastPacketAt = now
	s.watchdogRef = now
	s.packets.Add(1)

	if s.link == StateStale {
		s.logger.Infof("Control link restored")
		s.link = StateRunning
	}

	cmd, err := protocol.DecodeMotion(buf)
	if err != nil {
		s.decodeErrors.Add(1)
		s.logger.Warnf("Discarding control packet: %v", err)
		return nil
	}
	s.logger.Debugf("Cmd: %v", cmd)

	if err := s.Apply(cmd); err != nil {
		s.actuatorErrors.Add(1)
		return err
	}
	return nil
}

// Apply runs one command through the steering, drive and camera policy.
// The drive step always runs, even after a steering failure, so a stop
// command reaches the motors. Any failure skips the camera steps and the
// first error is returned.
func (s *Supervisor) Apply(cmd protocol.MotionCommand) error {
	steerErr := s.steer(float64(cmd.Angular))
	driveErr := s.drive(float64(cmd.Linear))

	if steerErr != nil {
		if driveErr != nil {
			s.actuatorErrors.Add(1)
			s.logger.Errorf("Drive step after steering failure: %v", driveErr)
		}
		return steerErr
	}
	if driveErr != nil {
		return driveErr
	}

	if cmd.CameraYaw != nil {
		applied, err := s.camera(OpPan, float64(*cmd.CameraYaw), s.state.lastCameraYaw, s.actuator.SetCameraPan)
		if err != nil {
			return err
		}
		if applied != nil {
			s.state.lastCameraYaw = applied
		}
	}

	if cmd.CameraPitch != nil {
		applied, err := s.camera(OpTilt, float64(*cmd.CameraPitch), s.state.lastCameraPitch, s.actuator.SetCameraTilt)
		if err != nil {
			return err
		}
		if applied != nil {
			s.state.lastCameraPitch = applied
		}
	}

	return nil
}

func (s *Supervisor) steer(angular float64) error {
	if math.IsNaN(angular) {
		return nil
	}
	candidate := s.policy.SteeringFor(angular)
	if !exceedsDeadband(candidate, s.state.lastSteeringAngle, s.policy.SteerDeadband) {
		return nil
	}
	if err := s.call(OpSteer, func() error { return s.actuator.SetSteeringAngle(candidate) }); err != nil {
		return err
	}
	s.state.lastSteeringAngle = candidate
	return nil
}

// drive applies the linear intent. A failed forward or backward call is
// followed by a Stop so the motors never keep an older direction.
func (s *Supervisor) drive(linear float64) error {
	p := s.policy
	switch {
	case math.IsNaN(linear) || math.Abs(linear) < p.LinearDeadband:
		if err := s.call(OpStop, s.actuator.Stop); err != nil {
			return err
		}
		s.driving = DriveStopped
	case linear > 0:
		speed := p.SpeedFor(linear)
		if err := s.call(OpForward, func() error { return s.actuator.DriveForward(speed) }); err != nil {
			s.haltAfter(err)
			return err
		}
		s.driving = DriveForward
	default:
		speed := p.SpeedFor(linear)
		if err := s.call(OpBackward, func() error { return s.actuator.DriveBackward(speed) }); err != nil {
			s.haltAfter(err)
			return err
		}
		s.driving = DriveBackward
	}
	return nil
}

func (s *Supervisor) haltAfter(cause error) {
	if err := s.call(OpStop, s.actuator.Stop); err != nil {
		s.actuatorErrors.Add(1)
		s.logger.Errorf("Stop after %v failed: %v", cause, err)
		return
	}
	s.driving = DriveStopped
}

// camera applies a clamped camera angle when it is the first one or moved
// past the deadband. It returns the applied angle, or nil if nothing was sent.
func (s *Supervisor) camera(op string, deg float64, last *float64, set func(float64) error) (*float64, error) {
	if math.IsNaN(deg) {
		return nil, nil
	}
	next := s.policy.CameraFor(deg)
	if last != nil && !exceedsDeadband(next, *last, s.policy.SteerDeadband) {
		return nil, nil
	}
	if err := s.call(op, func() error { return set(next) }); err != nil {
		return nil, err
	}
	return &next, nil
}

// CheckWatchdog stops the drive when no packet has arrived for a full
// ControlTimeout. Steering and camera are left where they are. While the
// link stays quiet the stop is repeated once per window.
func (s *Supervisor) CheckWatchdog() {
	now := s.now()
	if now.Sub(s.watchdogRef) < s.policy.ControlTimeout {
		return
	}

	if s.link == StateRunning {
		s.logger.Warnf("No control packet for %v, halting drive", now.Sub(s.watchdogRef))
		s.link = StateStale
	}
	s.watchdogRef = now
	s.watchdogStops.Add(1)

	if err := s.call(OpStop, s.actuator.Stop); err != nil {
		s.actuatorErrors.Add(1)
		s.logger.Errorf("Watchdog stop failed: %v", err)
		return
	}
	s.driving = DriveStopped
}

// Neutralize stops the drive and centres steering and camera. It runs at
// most once per Supervisor no matter how often or from where it is called.
// Every step is attempted even if an earlier one fails.
func (s *Supervisor) Neutralize() {
	s.neutralOnce.Do(func() {
		s.logger.Infof("Stopping robot and resetting angles")

		steps := []struct {
			op string
			fn func() error
		}{
			{OpStop, s.actuator.Stop},
			{OpSteer, func() error { return s.actuator.SetSteeringAngle(0) }},
			{OpPan, func() error { return s.actuator.SetCameraPan(0) }},
			{OpTilt, func() error { return s.actuator.SetCameraTilt(0) }},
		}
		for _, step := range steps {
			if err := s.call(step.op, step.fn); err != nil {
				s.actuatorErrors.Add(1)
				s.logger.Errorf("Neutral reset: %v", err)
			}
		}

		zeroYaw, zeroPitch := 0.0, 0.0
		s.state = actuatorState{
			lastSteeringAngle: 0,
			lastCameraYaw:     &zeroYaw,
			lastCameraPitch:   &zeroPitch,
		}
		s.driving = DriveStopped

		s.neutralized.Store(true)
		s.publish()
	})
}

// call runs one actuator operation, converting errors and driver panics
// into *ActuatorError.
func (s *Supervisor) call(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ActuatorError{Op: op, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	if callErr := fn(); callErr != nil {
		return &ActuatorError{Op: op, Err: callErr}
	}
	return nil
}
