// Package protocol defines the rover's datagram wire formats: binary
// motion/camera packets, text sound commands, and JSON telemetry readings.
package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Valid motion packet sizes.
const (
	MotionPacketSize       = 8
	MotionPacketSizeYaw    = 12
	MotionPacketSizeCamera = 16
	// MaxPacketSize is large enough for any datagram the rover accepts.
	MaxPacketSize = 1024
)

// ErrBadLength is matched by every DecodeError.
var ErrBadLength = errors.New("bad motion packet length")

// DecodeError reports a motion packet whose length is not 8, 12 or 16 bytes.
type DecodeError struct {
	Length int
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%v: %d bytes", ErrBadLength, e.Length)
}

// Is lets errors.Is(err, ErrBadLength) match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrBadLength
}

// MotionCommand is one decoded motion/camera packet.
// CameraYaw and CameraPitch are nil when the packet did not carry them.
type MotionCommand struct {
	Linear      float32
	Angular     float32
	CameraYaw   *float32
	CameraPitch *float32
}

// FieldCount returns how many floats the command carries.
func (c MotionCommand) FieldCount() int {
	n := 2
	if c.CameraYaw != nil {
		n++
	}
	if c.CameraPitch != nil {
		n++
	}
	return n
}

func (c MotionCommand) String() string {
	s := fmt.Sprintf("linear=%.2f angular=%.2f", c.Linear, c.Angular)
	if c.CameraYaw != nil {
		s += fmt.Sprintf(" yaw=%.2f", *c.CameraYaw)
	}
	if c.CameraPitch != nil {
		s += fmt.Sprintf(" pitch=%.2f", *c.CameraPitch)
	}
	return s
}

// DecodeMotion decodes packed little-endian float32 fields
// [linear, angular, (yaw), (pitch)] from buf.
func DecodeMotion(buf []byte) (MotionCommand, error) {
	switch len(buf) {
	case MotionPacketSize, MotionPacketSizeYaw, MotionPacketSizeCamera:
	default:
		return MotionCommand{}, &DecodeError{Length: len(buf)}
	}

	cmd := MotionCommand{
		Linear:  readFloat32(buf, 0),
		Angular: readFloat32(buf, 1),
	}
	if len(buf) >= MotionPacketSizeYaw {
		yaw := readFloat32(buf, 2)
		cmd.CameraYaw = &yaw
	}
	if len(buf) >= MotionPacketSizeCamera {
		pitch := readFloat32(buf, 3)
		cmd.CameraPitch = &pitch
	}
	return cmd, nil
}

// EncodeMotion is the inverse of DecodeMotion. Pitch is only written when yaw is present.
func EncodeMotion(cmd MotionCommand) []byte {
	fields := []float32{cmd.Linear, cmd.Angular}
	if cmd.CameraYaw != nil {
		fields = append(fields, *cmd.CameraYaw)
		if cmd.CameraPitch != nil {
			fields = append(fields, *cmd.CameraPitch)
		}
	}

	buf := make([]byte, 4*len(fields))
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func readFloat32(buf []byte, index int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[index*4:]))
}

// Float32 returns a pointer to v, for building optional fields.
func Float32(v float32) *float32 {
	return &v
}
