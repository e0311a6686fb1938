package motion

import "time"

// Drive directions reported in snapshots.
const (
	DriveStopped  = "stopped"
	DriveForward  = "forward"
	DriveBackward = "backward"
)

// Snapshot is a point-in-time copy of the supervisor state, safe to hand
// to other goroutines.
type Snapshot struct {
	State          string     `json:"state"`
	Steering       float64    `json:"steering_deg"`
	CameraYaw      *float64   `json:"camera_yaw_deg"`
	CameraPitch    *float64   `json:"camera_pitch_deg"`
	Drive          string     `json:"drive"`
	LastPacketAt   *time.Time `json:"last_packet_at,omitempty"`
	Packets        uint64     `json:"packets"`
	DecodeErrors   uint64     `json:"decode_errors"`
	ActuatorErrors uint64     `json:"actuator_errors"`
	WatchdogStops  uint64     `json:"watchdog_stops"`
	Neutralized    bool       `json:"neutralized"`
}

// Snapshot returns the state published at the end of the last iteration.
func (s *Supervisor) Snapshot() Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// publish copies the goroutine-private state into the shared snapshot.
func (s *Supervisor) publish() {
	snap := Snapshot{
		State:          s.link.String(),
		Steering:       s.state.lastSteeringAngle,
		CameraYaw:      copyFloat(s.state.lastCameraYaw),
		CameraPitch:    copyFloat(s.state.lastCameraPitch),
		Drive:          s.driving,
		Packets:        s.packets.Load(),
		DecodeErrors:   s.decodeErrors.Load(),
		ActuatorErrors: s.actuatorErrors.Load(),
		WatchdogStops:  s.watchdogStops.Load(),
		Neutralized:    s.neutralized.Load(),
	}
	if !s.lastPacketAt.IsZero() {
		at := s.lastPacketAt
		snap.LastPacketAt = &at
	}

	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
