package protocol

// Unavailable is written into every numeric field whose sensor could not be read.
const Unavailable = -1.0

// Position is a UWB location in metres.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// IMU holds one inertial sample.
type IMU struct {
	Gyro  [3]float64 `json:"gyro"`
	Accel [3]float64 `json:"accel"`
	Mag   [3]float64 `json:"mag"`
}

// TelemetryReading is the fixed-shape record sent to the telemetry consumer.
type TelemetryReading struct {
	UltrasonicDistance float64  `json:"ultrasonic_distance"`
	UWBLocation        Position `json:"uwb_location"`
	IMU                IMU      `json:"imu"`
}

// UnavailablePosition is the sentinel position.
func UnavailablePosition() Position {
	return Position{X: Unavailable, Y: Unavailable, Z: Unavailable}
}

// UnavailableIMU is the sentinel inertial sample.
func UnavailableIMU() IMU {
	v := [3]float64{Unavailable, Unavailable, Unavailable}
	return IMU{Gyro: v, Accel: v, Mag: v}
}

// NewUnavailableReading returns a reading with every field set to the sentinel.
func NewUnavailableReading() TelemetryReading {
	return TelemetryReading{
		UltrasonicDistance: Unavailable,
		UWBLocation:        UnavailablePosition(),
		IMU:                UnavailableIMU(),
	}
}
