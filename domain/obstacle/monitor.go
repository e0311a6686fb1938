// Package obstacle sounds the horn when something is too close to the
// range sensor. It only ever calls the audio facade.
package obstacle

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/shutdown"
)

// Settings control the monitor's thresholds and pacing.
type Settings struct {
	DangerDistanceCm float64
	Backoff          time.Duration
	IdleInterval     time.Duration
}

// Monitor polls the range sensor and honks below the danger distance.
type Monitor struct {
	sensor   hardware.RangeSensor
	audio    hardware.Audio
	settings Settings
	stop     *shutdown.Coordinator
	logger   customlog.Logger

	warnedUnavailable bool
	horns             atomic.Uint64
	lastRange         atomic.Value
}

// NewMonitor creates an obstacle monitor.
func NewMonitor(
	sensor hardware.RangeSensor,
	audio hardware.Audio,
	settings Settings,
	stop *shutdown.Coordinator,
	logger customlog.Logger,
) *Monitor {
	return &Monitor{
		sensor:   sensor,
		audio:    audio,
		settings: settings,
		stop:     stop,
		logger:   logger.WithField("component", "obstacle"),
	}
}

// Run samples range until stop is requested.
func (m *Monitor) Run() {
	m.logger.Infof("Obstacle monitor started (danger=%.0fcm)", m.settings.DangerDistanceCm)
	for !m.stop.IsStopRequested() {
		if !m.stop.Wait(m.Step()) {
			break
		}
	}
	m.logger.Infof("Obstacle monitor stopped")
}

// Step takes one range sample, honks if it is inside the danger distance,
// and returns how long to wait before the next sample.
func (m *Monitor) Step() time.Duration {
	distance, err := m.sensor.ReadRangeCm()
	if err != nil {
		// An unavailable reading means no obstacle.
		if !m.warnedUnavailable {
			if errors.Is(err, hardware.ErrUnavailable) {
				m.logger.Warnf("Range unavailable, treating as clear")
			} else {
				m.logger.Warnf("Range read failed, treating as clear: %v", err)
			}
			m.warnedUnavailable = true
		}
		return m.settings.IdleInterval
	}
	m.warnedUnavailable = false
	m.lastRange.Store(distance)

	if distance >= 0 && distance < m.settings.DangerDistanceCm {
		m.logger.Warnf("Obstacle at %.1fcm, honking", distance)
		m.horns.Add(1)
		m.audio.PlayHorn()
		return m.settings.Backoff
	}
	return m.settings.IdleInterval
}

// Horns returns how many times the monitor has honked.
func (m *Monitor) Horns() uint64 {
	return m.horns.Load()
}

// LastRangeCm returns the last successful sample, if any.
func (m *Monitor) LastRangeCm() (float64, bool) {
	v, ok := m.lastRange.Load().(float64)
	return v, ok
}
