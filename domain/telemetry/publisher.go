// Package telemetry samples the robot's sensors on a fixed interval and
// fans each reading out to a set of sinks.
package telemetry

import (
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/shutdown"
)

// Sink receives every published reading. Publish must not block for long;
// a failing sink is logged and skipped for that cycle.
type Sink interface {
	Name() string
	Publish(at time.Time, reading protocol.TelemetryReading) error
	Close() error
}

// Sensors groups the optional sensor facades. A nil sensor reads as
// unavailable.
type Sensors struct {
	Range    hardware.RangeSensor
	Inertial hardware.InertialSensor
	Position hardware.PositionSensor
}

// Envelope is a reading tagged with its origin, used by the JSON sinks
// that are not bound to the fixed UDP schema.
type Envelope struct {
	RobotID   string    `json:"robot_id"`
	Timestamp time.Time `json:"timestamp"`
	protocol.TelemetryReading
}

// Stats counts publisher activity.
type Stats struct {
	Cycles      uint64 `json:"cycles"`
	SinkErrors  uint64 `json:"sink_errors"`
	SensorFails uint64 `json:"sensor_failures"`
}

// Publisher runs the telemetry loop.
type Publisher struct {
	robotID  string
	sensors  Sensors
	sinks    []Sink
	interval time.Duration
	stop     *shutdown.Coordinator
	logger   customlog.Logger
	now      func() time.Time

	// Loop-private failure state, used to log transitions only.
	sinkDown   map[string]bool
	sensorDown map[string]bool

	cycles      atomic.Uint64
	sinkErrors  atomic.Uint64
	sensorFails atomic.Uint64

	mu     sync.RWMutex
	latest *Envelope
}

// NewPublisher creates a telemetry publisher.
func NewPublisher(
	robotID string,
	sensors Sensors,
	sinks []Sink,
	interval time.Duration,
	stop *shutdown.Coordinator,
	logger customlog.Logger,
) *Publisher {
	return &Publisher{
		robotID:    robotID,
		sensors:    sensors,
		sinks:      sinks,
		interval:   interval,
		stop:       stop,
		logger:     logger.WithField("component", "telemetry"),
		now:        time.Now,
		sinkDown:   make(map[string]bool),
		sensorDown: make(map[string]bool),
	}
}

// Run publishes one reading per interval until stop is requested.
func (p *Publisher) Run() {
	p.logger.Infof("Telemetry publisher started (interval=%v, sinks=%d)", p.interval, len(p.sinks))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for !p.stop.IsStopRequested() {
		p.PublishOnce()

		select {
		case <-p.stop.Done():
		case <-ticker.C:
		}
	}

	p.logger.Infof("Telemetry publisher stopped")
}

// PublishOnce samples the sensors and hands the reading to every sink.
func (p *Publisher) PublishOnce() protocol.TelemetryReading {
	at := p.now()
	reading := p.Sample()

	for _, sink := range p.sinks {
		err := sink.Publish(at, reading)
		p.trackSink(sink.Name(), err)
	}

	p.cycles.Add(1)
	p.mu.Lock()
	p.latest = &Envelope{RobotID: p.robotID, Timestamp: at, TelemetryReading: reading}
	p.mu.Unlock()

	return reading
}

// Sample reads every sensor. Any group that cannot be read is filled with
// the sentinel value.
func (p *Publisher) Sample() protocol.TelemetryReading {
	reading := protocol.NewUnavailableReading()

	if p.sensors.Range != nil {
		cm, err := p.sensors.Range.ReadRangeCm()
		if p.trackSensor("range", err) {
			reading.UltrasonicDistance = finiteOr(cm)
		}
	}
	if p.sensors.Position != nil {
		pos, err := p.sensors.Position.ReadPosition()
		if p.trackSensor("uwb", err) {
			reading.UWBLocation = protocol.Position{X: finiteOr(pos.X), Y: finiteOr(pos.Y), Z: finiteOr(pos.Z)}
		}
	}
	if p.sensors.Inertial != nil {
		imu, err := p.sensors.Inertial.ReadIMU()
		if p.trackSensor("imu", err) {
			reading.IMU = protocol.IMU{Gyro: finiteVec(imu.Gyro), Accel: finiteVec(imu.Accel), Mag: finiteVec(imu.Mag)}
		}
	}
	return reading
}

// finiteOr maps NaN and ±Inf to the sentinel; JSON cannot carry them.
func finiteOr(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return protocol.Unavailable
	}
	return v
}

func finiteVec(v [3]float64) [3]float64 {
	for i := range v {
		v[i] = finiteOr(v[i])
	}
	return v
}

// Latest returns the most recently published reading.
func (p *Publisher) Latest() (Envelope, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.latest == nil {
		return Envelope{}, false
	}
	return *p.latest, true
}

// Stats returns publisher counters.
func (p *Publisher) Stats() Stats {
	return Stats{
		Cycles:      p.cycles.Load(),
		SinkErrors:  p.sinkErrors.Load(),
		SensorFails: p.sensorFails.Load(),
	}
}

func (p *Publisher) trackSensor(name string, err error) bool {
	if err != nil {
		p.sensorFails.Add(1)
		if !p.sensorDown[name] {
			p.logger.Warnf("Sensor %s unavailable: %v", name, err)
			p.sensorDown[name] = true
		}
		return false
	}
	if p.sensorDown[name] {
		p.logger.Infof("Sensor %s available again", name)
		p.sensorDown[name] = false
	}
	return true
}

func (p *Publisher) trackSink(name string, err error) {
	if err != nil {
		p.sinkErrors.Add(1)
		if !p.sinkDown[name] {
			p.logger.Warnf("Telemetry sink %s failed: %v", name, err)
			p.sinkDown[name] = true
		}
		return
	}
	if p.sinkDown[name] {
		p.logger.Infof("Telemetry sink %s recovered", name)
		p.sinkDown[name] = false
	}
}
