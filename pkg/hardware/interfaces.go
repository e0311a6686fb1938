// Package hardware defines the capability interfaces the rover core calls
// into, together with the concrete drivers selected by configuration.
//
// The core depends only on the interfaces. Drivers:
//
//   - sim: an in-process robot that records actuator calls and returns fixed
//     bench readings.
//   - serial: a microcontroller on a serial link speaking a line protocol.
//   - exec audio: text-to-speech and horn playback through external commands.
package hardware

import (
	"errors"

	"github.com/open-teleop/rover/pkg/protocol"
)

// ErrUnavailable is returned by sensors that have no current reading.
var ErrUnavailable = errors.New("sensor reading unavailable")

// Actuator drives the steering servo, drive motors and camera pan/tilt.
// Calls are synchronous and idempotent. Only the motion supervisor calls it.
type Actuator interface {
	SetSteeringAngle(deg float64) error
	DriveForward(speed float64) error
	DriveBackward(speed float64) error
	Stop() error
	SetCameraPan(deg float64) error
	SetCameraTilt(deg float64) error
}

// RangeSensor reads the ultrasonic distance.
type RangeSensor interface {
	ReadRangeCm() (float64, error)
}

// InertialSensor reads gyro, accelerometer and magnetometer.
type InertialSensor interface {
	ReadIMU() (protocol.IMU, error)
}

// PositionSensor reads a UWB position fix.
type PositionSensor interface {
	ReadPosition() (protocol.Position, error)
}

// Audio speaks text and plays the horn. Both return immediately.
type Audio interface {
	Speak(text string)
	PlayHorn()
}
