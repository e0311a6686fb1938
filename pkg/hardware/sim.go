package hardware

import (
	"sync"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

// Bench values reported by the simulated sensors.
var (
	SimPosition = protocol.Position{X: 1.23, Y: 4.56, Z: 0.78}
	SimIMU      = protocol.IMU{
		Gyro:  [3]float64{0, 0, 0},
		Accel: [3]float64{0, 0, 9.8},
		Mag:   [3]float64{0.1, 0.1, 0.1},
	}
)

// SimDefaultRangeCm keeps the obstacle monitor quiet on the bench.
const SimDefaultRangeCm = 100.0

// SimPose is the simulated robot's current output state.
type SimPose struct {
	Steering float64
	Drive    float64 // positive forward, negative backward, 0 stopped
	Pan      float64
	Tilt     float64
}

// SimRobot is an in-process stand-in for the robot hardware.
type SimRobot struct {
	logger customlog.Logger

	mu      sync.Mutex
	pose    SimPose
	rangeCm float64
	calls   int
}

var (
	_ Actuator       = (*SimRobot)(nil)
	_ RangeSensor    = (*SimRobot)(nil)
	_ InertialSensor = (*SimRobot)(nil)
	_ PositionSensor = (*SimRobot)(nil)
)

// NewSimRobot creates a simulated robot at the neutral pose.
func NewSimRobot(logger customlog.Logger) *SimRobot {
	return &SimRobot{
		logger:  logger.WithField("driver", "sim"),
		rangeCm: SimDefaultRangeCm,
	}
}

func (r *SimRobot) update(op string, value float64, apply func(p *SimPose)) error {
	r.mu.Lock()
	apply(&r.pose)
	r.calls++
	r.mu.Unlock()
	r.logger.Debugf("%s %.2f", op, value)
	return nil
}

func (r *SimRobot) SetSteeringAngle(deg float64) error {
	return r.update("steer", deg, func(p *SimPose) { p.Steering = deg })
}

func (r *SimRobot) DriveForward(speed float64) error {
	return r.update("forward", speed, func(p *SimPose) { p.Drive = speed })
}

func (r *SimRobot) DriveBackward(speed float64) error {
	return r.update("backward", speed, func(p *SimPose) { p.Drive = -speed })
}

func (r *SimRobot) Stop() error {
	return r.update("stop", 0, func(p *SimPose) { p.Drive = 0 })
}

func (r *SimRobot) SetCameraPan(deg float64) error {
	return r.update("pan", deg, func(p *SimPose) { p.Pan = deg })
}

func (r *SimRobot) SetCameraTilt(deg float64) error {
	return r.update("tilt", deg, func(p *SimPose) { p.Tilt = deg })
}

// Pose returns the current simulated output state.
func (r *SimRobot) Pose() SimPose {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pose
}

// Calls returns how many actuator calls have been made.
func (r *SimRobot) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// SetRange changes the simulated distance. A negative value makes the sensor unavailable.
func (r *SimRobot) SetRange(cm float64) {
	r.mu.Lock()
	r.rangeCm = cm
	r.mu.Unlock()
}

func (r *SimRobot) ReadRangeCm() (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rangeCm < 0 {
		return 0, ErrUnavailable
	}
	return r.rangeCm, nil
}

func (r *SimRobot) ReadIMU() (protocol.IMU, error) {
	return SimIMU, nil
}

func (r *SimRobot) ReadPosition() (protocol.Position, error) {
	return SimPosition, nil
}

// SimSpokenHistory is how many recent utterances SimAudio keeps.
const SimSpokenHistory = 32

// SimAudio logs audio requests instead of playing them.
type SimAudio struct {
	logger customlog.Logger

	mu          sync.Mutex
	spoken      []string
	spokenCount int
	horns       int
}

var _ Audio = (*SimAudio)(nil)

// NewSimAudio creates a logging audio facade.
func NewSimAudio(logger customlog.Logger) *SimAudio {
	return &SimAudio{logger: logger.WithField("driver", "sim-audio")}
}

func (a *SimAudio) Speak(text string) {
	a.mu.Lock()
	if len(a.spoken) == SimSpokenHistory {
		copy(a.spoken, a.spoken[1:])
		a.spoken = a.spoken[:SimSpokenHistory-1]
	}
	a.spoken = append(a.spoken, text)
	a.spokenCount++
	a.mu.Unlock()
	a.logger.Infof("TTS: %s", text)
}

func (a *SimAudio) PlayHorn() {
	a.mu.Lock()
	a.horns++
	a.mu.Unlock()
	a.logger.Infof("Honking")
}

// Spoken returns the most recent utterances, oldest first.
func (a *SimAudio) Spoken() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.spoken))
	copy(out, a.spoken)
	return out
}

// SpokenCount returns how many utterances were requested in total.
func (a *SimAudio) SpokenCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.spokenCount
}

// Horns returns how many times the horn was played.
func (a *SimAudio) Horns() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.horns
}
