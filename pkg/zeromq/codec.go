package zeromq

import (
	"errors"
	"time"

	flatbuffers "github.com/google/flatbuffers/go"

	fb "github.com/open-teleop/rover/pkg/flatbuffers/rover/telemetry"
	"github.com/open-teleop/rover/pkg/protocol"
)

// ErrShortPayload is returned when a payload is too small to hold a Reading.
var ErrShortPayload = errors.New("telemetry payload too short")

// EncodeReading serializes a reading as a rover.telemetry.Reading flatbuffer.
func EncodeReading(robotID string, at time.Time, reading protocol.TelemetryReading) []byte {
	builder := flatbuffers.NewBuilder(256)

	robotOffset := builder.CreateString(robotID)
	gyroOffset := float32Vector(builder, fb.ReadingStartGyroVector, reading.IMU.Gyro)
	accelOffset := float32Vector(builder, fb.ReadingStartAccelVector, reading.IMU.Accel)
	magOffset := float32Vector(builder, fb.ReadingStartMagVector, reading.IMU.Mag)

	fb.ReadingStart(builder)
	fb.ReadingAddTimestampNs(builder, at.UnixNano())
	fb.ReadingAddRobotId(builder, robotOffset)
	fb.ReadingAddUltrasonicDistance(builder, float32(reading.UltrasonicDistance))
	fb.ReadingAddUwbX(builder, float32(reading.UWBLocation.X))
	fb.ReadingAddUwbY(builder, float32(reading.UWBLocation.Y))
	fb.ReadingAddUwbZ(builder, float32(reading.UWBLocation.Z))
	fb.ReadingAddGyro(builder, gyroOffset)
	fb.ReadingAddAccel(builder, accelOffset)
	fb.ReadingAddMag(builder, magOffset)
	fb.FinishReadingBuffer(builder, fb.ReadingEnd(builder))

	return builder.FinishedBytes()
}

// DecodeReading is the inverse of EncodeReading. Vectors shorter than three
// elements decode as unavailable.
func DecodeReading(buf []byte) (string, time.Time, protocol.TelemetryReading, error) {
	if len(buf) < flatbuffers.SizeUOffsetT {
		return "", time.Time{}, protocol.TelemetryReading{}, ErrShortPayload
	}
	r := fb.GetRootAsReading(buf, 0)

	reading := protocol.TelemetryReading{
		UltrasonicDistance: float64(r.UltrasonicDistance()),
		UWBLocation: protocol.Position{
			X: float64(r.UwbX()),
			Y: float64(r.UwbY()),
			Z: float64(r.UwbZ()),
		},
		IMU: protocol.IMU{
			Gyro:  readVector(r.GyroLength(), r.Gyro),
			Accel: readVector(r.AccelLength(), r.Accel),
			Mag:   readVector(r.MagLength(), r.Mag),
		},
	}
	return string(r.RobotId()), time.Unix(0, r.TimestampNs()), reading, nil
}

func float32Vector(builder *flatbuffers.Builder, start func(*flatbuffers.Builder, int) flatbuffers.UOffsetT, v [3]float64) flatbuffers.UOffsetT {
	start(builder, len(v))
	for i := len(v) - 1; i >= 0; i-- {
		builder.PrependFloat32(float32(v[i]))
	}
	return builder.EndVector(len(v))
}

func readVector(n int, at func(int) float32) [3]float64 {
	out := [3]float64{protocol.Unavailable, protocol.Unavailable, protocol.Unavailable}
	if n < len(out) {
		return out
	}
	for i := range out {
		out[i] = float64(at(i))
	}
	return out
}
