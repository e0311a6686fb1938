package motion

import (
	"math"
	"time"

	"github.com/open-teleop/rover/pkg/config"
)

// Policy holds the clamp, hysteresis and watchdog constants applied to every command.
type Policy struct {
	SteerGain         float64
	MaxSteer          float64
	SteerDeadband     float64
	LinearDeadband    float64
	DriveSpeed        float64
	ProportionalSpeed bool
	CameraLimit       float64
	ControlTimeout    time.Duration
	PollInterval      time.Duration
}

// DefaultPolicy returns the reference policy.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.Default().Motion)
}

// PolicyFromConfig converts the motion config section into a Policy.
func PolicyFromConfig(cfg config.MotionConfig) Policy {
	return Policy{
		SteerGain:         cfg.SteerGain,
		MaxSteer:          cfg.MaxSteerDeg,
		SteerDeadband:     cfg.SteerDeadbandDeg,
		LinearDeadband:    cfg.LinearDeadband,
		DriveSpeed:        cfg.DriveSpeed,
		ProportionalSpeed: cfg.SpeedScaling == config.SpeedScalingProportional,
		CameraLimit:       cfg.CameraLimitDeg,
		ControlTimeout:    cfg.ControlTimeout(),
		PollInterval:      cfg.PollInterval(),
	}
}

// SteeringFor maps an angular intent to a steering angle within ±MaxSteer.
func (p Policy) SteeringFor(angular float64) float64 {
	return clamp(angular*p.SteerGain, -p.MaxSteer, p.MaxSteer)
}

// CameraFor clamps a camera angle to ±CameraLimit.
func (p Policy) CameraFor(deg float64) float64 {
	return clamp(deg, -p.CameraLimit, p.CameraLimit)
}

// SpeedFor returns the drive speed for a linear intent outside the deadband.
// Only the sign of linear matters unless ProportionalSpeed is set.
func (p Policy) SpeedFor(linear float64) float64 {
	if !p.ProportionalSpeed {
		return p.DriveSpeed
	}
	return p.DriveSpeed * math.Min(math.Abs(linear), 1)
}

// exceedsDeadband reports whether next differs from last by more than band.
func exceedsDeadband(next, last, band float64) bool {
	return math.Abs(next-last) > band
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
