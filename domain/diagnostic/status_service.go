// Package diagnostic aggregates the runtime state of every loop into a
// single status report for the HTTP API.
package diagnostic

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/open-teleop/rover/domain/motion"
	"github.com/open-teleop/rover/domain/sound"
	"github.com/open-teleop/rover/domain/telemetry"
)

// MotionSource reports the supervisor state.
type MotionSource interface {
	Snapshot() motion.Snapshot
}

// SoundSource reports sound listener counters.
type SoundSource interface {
	Stats() sound.Stats
}

// ObstacleSource reports obstacle monitor state.
type ObstacleSource interface {
	Horns() uint64
	LastRangeCm() (float64, bool)
}

// TelemetrySource reports telemetry publisher state.
type TelemetrySource interface {
	Stats() telemetry.Stats
	Latest() (telemetry.Envelope, bool)
}

// StopSource reports whether shutdown has begun.
type StopSource interface {
	IsStopRequested() bool
}

// Sources are the loops the status service reads from. Nil sources are
// reported as absent.
type Sources struct {
	Motion    MotionSource
	Sound     SoundSource
	Obstacle  ObstacleSource
	Telemetry TelemetrySource
	Stop      StopSource
}

// ObstacleStatus is the obstacle monitor part of the report.
type ObstacleStatus struct {
	Horns       uint64   `json:"horns"`
	LastRangeCm *float64 `json:"last_range_cm"`
}

// RobotStatus is the full status report.
type RobotStatus struct {
	RobotID   string           `json:"robot_id"`
	BootID    string           `json:"boot_id"`
	StartedAt time.Time        `json:"started_at"`
	UptimeSec float64          `json:"uptime_sec"`
	Stopping  bool             `json:"stopping"`
	Motion    *motion.Snapshot `json:"motion,omitempty"`
	Sound     *sound.Stats     `json:"sound,omitempty"`
	Obstacle  *ObstacleStatus  `json:"obstacle,omitempty"`
	Telemetry *telemetry.Stats `json:"telemetry,omitempty"`
}

// StatusService builds status reports.
type StatusService struct {
	robotID   string
	bootID    string
	startedAt time.Time
	sources   Sources
	now       func() time.Time
}

// NewStatusService creates a status service. A new boot ID is generated
// for every process start.
func NewStatusService(robotID string, sources Sources) *StatusService {
	return &StatusService{
		robotID:   robotID,
		bootID:    uuid.NewString(),
		startedAt: time.Now(),
		sources:   sources,
		now:       time.Now,
	}
}

// BootID identifies this process run.
func (s *StatusService) BootID() string {
	return s.bootID
}

// GetStatus collects the current report.
func (s *StatusService) GetStatus() RobotStatus {
	status := RobotStatus{
		RobotID:   s.robotID,
		BootID:    s.bootID,
		StartedAt: s.startedAt,
		UptimeSec: s.now().Sub(s.startedAt).Seconds(),
	}

	if s.sources.Stop != nil {
		status.Stopping = s.sources.Stop.IsStopRequested()
	}
	if s.sources.Motion != nil {
		snap := s.sources.Motion.Snapshot()
		status.Motion = &snap
	}
	if s.sources.Sound != nil {
		stats := s.sources.Sound.Stats()
		status.Sound = &stats
	}
	if s.sources.Obstacle != nil {
		obs := &ObstacleStatus{Horns: s.sources.Obstacle.Horns()}
		if cm, ok := s.sources.Obstacle.LastRangeCm(); ok {
			obs.LastRangeCm = &cm
		}
		status.Obstacle = obs
	}
	if s.sources.Telemetry != nil {
		stats := s.sources.Telemetry.Stats()
		status.Telemetry = &stats
	}
	return status
}

// GetStatusHandler handles API requests for the robot status.
func (s *StatusService) GetStatusHandler(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "success",
		"robot":  s.GetStatus(),
	})
}

// GetTelemetryHandler returns the last published telemetry reading.
func (s *StatusService) GetTelemetryHandler(c *fiber.Ctx) error {
	if s.sources.Telemetry == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "Telemetry publisher not running.",
		})
	}
	latest, ok := s.sources.Telemetry.Latest()
	if !ok {
		return c.Status(http.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "No telemetry published yet.",
		})
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"telemetry": latest,
	})
}
