package telemetry

import (
	"encoding/json"
	"errors"
	"math"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/shutdown"
	"github.com/open-teleop/rover/pkg/transport"
)

type recordingSink struct {
	mu       sync.Mutex
	readings []protocol.TelemetryReading
	err      error
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Publish(_ time.Time, r protocol.TelemetryReading) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.readings = append(s.readings, r)
	return nil
}

func (s *recordingSink) Close() error { return nil }

func (s *recordingSink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.readings)
}

type failingRange struct{}

func (failingRange) ReadRangeCm() (float64, error) { return 0, hardware.ErrUnavailable }

type failingIMU struct{}

func (failingIMU) ReadIMU() (protocol.IMU, error) { return protocol.IMU{}, errors.New("bus error") }

// nonFiniteSensors reports NaN and ±Inf with a nil error, like a board
// that prints "nan" for a failed float read.
type nonFiniteSensors struct{}

func (nonFiniteSensors) ReadRangeCm() (float64, error) { return math.NaN(), nil }

func (nonFiniteSensors) ReadPosition() (protocol.Position, error) {
	return protocol.Position{X: math.Inf(1), Y: 2, Z: math.NaN()}, nil
}

func (nonFiniteSensors) ReadIMU() (protocol.IMU, error) {
	return protocol.IMU{
		Gyro:  [3]float64{math.NaN(), 0.5, 0},
		Accel: [3]float64{0, 0, 9.8},
		Mag:   [3]float64{math.Inf(-1), 0.1, 0.1},
	}, nil
}

func newTestPublisher(sensors Sensors, sinks ...Sink) *Publisher {
	logger := customlog.NewDiscardLogger()
	return NewPublisher("rover", sensors, sinks, 10*time.Millisecond, shutdown.NewCoordinator(logger), logger)
}

func TestSampleFromSimRobot(t *testing.T) {
	robot := hardware.NewSimRobot(customlog.NewDiscardLogger())
	robot.SetRange(55)
	p := newTestPublisher(Sensors{Range: robot, Inertial: robot, Position: robot})

	got := p.Sample()
	if got.UltrasonicDistance != 55 {
		t.Errorf("Expected range 55, got %v", got.UltrasonicDistance)
	}
	if got.UWBLocation != hardware.SimPosition {
		t.Errorf("Expected sim position, got %+v", got.UWBLocation)
	}
	if got.IMU != hardware.SimIMU {
		t.Errorf("Expected sim IMU, got %+v", got.IMU)
	}
}

func TestSampleUsesSentinels(t *testing.T) {
	tests := []struct {
		name    string
		sensors Sensors
	}{
		{"no sensors", Sensors{}},
		{"failing sensors", Sensors{Range: failingRange{}, Inertial: failingIMU{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPublisher(tt.sensors)
			if got := p.Sample(); got != protocol.NewUnavailableReading() {
				t.Errorf("Expected all sentinels, got %+v", got)
			}
		})
	}
}

func TestNonFiniteValuesBecomeSentinels(t *testing.T) {
	listener, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP failed: %v", err)
	}
	defer listener.Close()

	sink, err := NewUDPSink(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSink failed: %v", err)
	}
	defer sink.Close()

	sensors := nonFiniteSensors{}
	p := newTestPublisher(Sensors{Range: sensors, Inertial: sensors, Position: sensors}, sink)
	got := p.PublishOnce()

	want := protocol.TelemetryReading{
		UltrasonicDistance: protocol.Unavailable,
		UWBLocation:        protocol.Position{X: protocol.Unavailable, Y: 2, Z: protocol.Unavailable},
		IMU: protocol.IMU{
			Gyro:  [3]float64{protocol.Unavailable, 0.5, 0},
			Accel: [3]float64{0, 0, 9.8},
			Mag:   [3]float64{protocol.Unavailable, 0.1, 0.1},
		},
	}
	if got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if stats := p.Stats(); stats.SinkErrors != 0 {
		t.Errorf("Expected no sink errors, got %+v", stats)
	}

	buf := make([]byte, 2048)
	n, _, err := listener.Receive(buf, time.Second)
	if err != nil {
		t.Fatalf("No datagram received: %v", err)
	}
	var decoded protocol.TelemetryReading
	if err := json.Unmarshal(buf[:n], &decoded); err != nil {
		t.Fatalf("Invalid JSON %q: %v", buf[:n], err)
	}
	if decoded != want {
		t.Errorf("Expected %+v on the wire, got %+v", want, decoded)
	}
}

func TestFailingSinkDoesNotStopOthers(t *testing.T) {
	bad := &recordingSink{err: errors.New("network unreachable")}
	good := &recordingSink{}
	p := newTestPublisher(Sensors{}, bad, good)

	p.PublishOnce()
	p.PublishOnce()

	if good.Count() != 2 {
		t.Errorf("Expected 2 readings on healthy sink, got %d", good.Count())
	}
	stats := p.Stats()
	if stats.Cycles != 2 || stats.SinkErrors != 2 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if _, ok := p.Latest(); !ok {
		t.Error("Expected a latest reading")
	}
}

func TestRunPublishesUntilStopped(t *testing.T) {
	logger := customlog.NewDiscardLogger()
	stop := shutdown.NewCoordinator(logger)
	sink := &recordingSink{}
	p := NewPublisher("rover", Sensors{}, []Sink{sink}, 10*time.Millisecond, stop, logger)

	done := make(chan struct{})
	go func() {
		p.Run()
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for sink.Count() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	stop.RequestStop("test")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publisher did not stop")
	}
	if sink.Count() < 3 {
		t.Errorf("Expected at least 3 readings, got %d", sink.Count())
	}
}

func TestUDPSinkSendsFixedShapeJSON(t *testing.T) {
	listener, err := transport.ListenUDP("127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenUDP failed: %v", err)
	}
	defer listener.Close()

	sink, err := NewUDPSink(listener.LocalAddr().String())
	if err != nil {
		t.Fatalf("NewUDPSink failed: %v", err)
	}
	defer sink.Close()

	reading := protocol.NewUnavailableReading()
	reading.UltrasonicDistance = 12.5
	if err := sink.Publish(time.Now(), reading); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	buf := make([]byte, 2048)
	n, _, err := listener.Receive(buf, time.Second)
	if err != nil {
		t.Fatalf("Receive failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(buf[:n], &decoded); err != nil {
		t.Fatalf("Invalid JSON %q: %v", buf[:n], err)
	}
	if len(decoded) != 3 {
		t.Errorf("Expected exactly 3 top-level keys, got %v", decoded)
	}
	if decoded["ultrasonic_distance"] != 12.5 {
		t.Errorf("Expected distance 12.5, got %v", decoded["ultrasonic_distance"])
	}
	uwb := decoded["uwb_location"].(map[string]interface{})
	if uwb["x"] != -1.0 || uwb["y"] != -1.0 || uwb["z"] != -1.0 {
		t.Errorf("Expected sentinel location, got %v", uwb)
	}
	imu := decoded["imu"].(map[string]interface{})
	for _, key := range []string{"gyro", "accel", "mag"} {
		v := imu[key].([]interface{})
		if len(v) != 3 || v[0] != -1.0 {
			t.Errorf("Expected sentinel %s, got %v", key, v)
		}
	}
}

func TestUDPSinkWithoutListener(t *testing.T) {
	// Sending to a closed port must not be fatal for the loop.
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket failed: %v", err)
	}
	addr := conn.LocalAddr().String()
	conn.Close()

	sink, err := NewUDPSink(addr)
	if err != nil {
		t.Fatalf("NewUDPSink failed: %v", err)
	}
	defer sink.Close()

	p := newTestPublisher(Sensors{}, sink)
	for i := 0; i < 3; i++ {
		p.PublishOnce()
	}
	if p.Stats().Cycles != 3 {
		t.Errorf("Expected 3 cycles, got %d", p.Stats().Cycles)
	}
}
