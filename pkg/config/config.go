package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Speed scaling policies for the drive output.
const (
	SpeedScalingFixed        = "fixed"
	SpeedScalingProportional = "proportional"
)

// Hardware drivers.
const (
	DriverSim    = "sim"
	DriverSerial = "serial"
	AudioSim     = "sim"
	AudioExec    = "exec"
)

// Config represents the rover agent configuration
type Config struct {
	RobotID   string          `yaml:"robot_id" json:"robot_id"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Motion    MotionConfig    `yaml:"motion" json:"motion"`
	Sound     SoundConfig     `yaml:"sound" json:"sound"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Obstacle  ObstacleConfig  `yaml:"obstacle" json:"obstacle"`
	Hardware  HardwareConfig  `yaml:"hardware" json:"hardware"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level" json:"level"`
	LogPath string `yaml:"log_path,omitempty" json:"log_path,omitempty"`
}

// ServerConfig holds the HTTP status server settings
type ServerConfig struct {
	Disabled bool `yaml:"disabled" json:"disabled"`
	HTTPPort int  `yaml:"http_port" json:"http_port"`
}

// MotionConfig holds the motion/camera control channel and its safety policy
type MotionConfig struct {
	ListenAddress    string  `yaml:"listen_address" json:"listen_address"`
	ControlTimeoutMs int     `yaml:"control_timeout_ms" json:"control_timeout_ms"`
	PollIntervalMs   int     `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	SteerGain        float64 `yaml:"steer_gain" json:"steer_gain"`
	MaxSteerDeg      float64 `yaml:"max_steer_deg" json:"max_steer_deg"`
	SteerDeadbandDeg float64 `yaml:"steer_deadband_deg" json:"steer_deadband_deg"`
	LinearDeadband   float64 `yaml:"linear_deadband" json:"linear_deadband"`
	DriveSpeed       float64 `yaml:"drive_speed" json:"drive_speed"`
	SpeedScaling     string  `yaml:"speed_scaling" json:"speed_scaling"`
	CameraLimitDeg   float64 `yaml:"camera_limit_deg" json:"camera_limit_deg"`
}

// SoundConfig holds the voice/horn channel settings
type SoundConfig struct {
	ListenAddress  string   `yaml:"listen_address" json:"listen_address"`
	PollIntervalMs int      `yaml:"poll_interval_ms" json:"poll_interval_ms"`
	TTSCommand     []string `yaml:"tts_command" json:"tts_command"`
	HornCommand    []string `yaml:"horn_command" json:"horn_command"`
}

// TelemetryConfig holds sensor telemetry publishing settings
type TelemetryConfig struct {
	TargetAddress string       `yaml:"target_address" json:"target_address"`
	IntervalMs    int          `yaml:"interval_ms" json:"interval_ms"`
	ZeroMQ        ZeroMQConfig `yaml:"zeromq" json:"zeromq"`
	MQTT          MQTTConfig   `yaml:"mqtt" json:"mqtt"`
}

// ZeroMQConfig configures the optional ZeroMQ PUB telemetry sink.
// An empty PublishBindAddress disables it.
type ZeroMQConfig struct {
	PublishBindAddress string `yaml:"publish_bind_address" json:"publish_bind_address"`
	Topic              string `yaml:"topic" json:"topic"`
}

// MQTTConfig configures the optional MQTT telemetry sink.
// An empty Broker disables it.
type MQTTConfig struct {
	Broker   string `yaml:"broker" json:"broker"`
	Topic    string `yaml:"topic" json:"topic"`
	ClientID string `yaml:"client_id" json:"client_id"`
	QoS      byte   `yaml:"qos" json:"qos"`
}

// ObstacleConfig holds the proximity horn settings
type ObstacleConfig struct {
	Disabled         bool    `yaml:"disabled" json:"disabled"`
	DangerDistanceCm float64 `yaml:"danger_distance_cm" json:"danger_distance_cm"`
	BackoffMs        int     `yaml:"backoff_ms" json:"backoff_ms"`
	IdleIntervalMs   int     `yaml:"idle_interval_ms" json:"idle_interval_ms"`
}

// HardwareConfig selects and configures the actuator, sensor and audio drivers
type HardwareConfig struct {
	Driver         string `yaml:"driver" json:"driver"`
	ActuatorDevice string `yaml:"actuator_device" json:"actuator_device"`
	ActuatorBaud   int    `yaml:"actuator_baud" json:"actuator_baud"`
	RangeDevice    string `yaml:"range_device" json:"range_device"`
	RangeBaud      int    `yaml:"range_baud" json:"range_baud"`
	RangeMaxAgeMs  int    `yaml:"range_max_age_ms" json:"range_max_age_ms"`
	Audio          string `yaml:"audio" json:"audio"`
}

// ControlTimeout is the watchdog window of the motion channel.
func (m MotionConfig) ControlTimeout() time.Duration {
	return time.Duration(m.ControlTimeoutMs) * time.Millisecond
}

// PollInterval bounds a single blocking read on the motion socket.
func (m MotionConfig) PollInterval() time.Duration {
	return time.Duration(m.PollIntervalMs) * time.Millisecond
}

// PollInterval bounds a single blocking read on the sound socket.
func (s SoundConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMs) * time.Millisecond
}

// Interval is the telemetry sampling period.
func (t TelemetryConfig) Interval() time.Duration {
	return time.Duration(t.IntervalMs) * time.Millisecond
}

// Backoff is the quiet period after the horn fires.
func (o ObstacleConfig) Backoff() time.Duration {
	return time.Duration(o.BackoffMs) * time.Millisecond
}

// IdleInterval is the range polling period when nothing is close.
func (o ObstacleConfig) IdleInterval() time.Duration {
	return time.Duration(o.IdleIntervalMs) * time.Millisecond
}

// RangeMaxAge is how old a streamed range sample may be before it counts as unavailable.
func (h HardwareConfig) RangeMaxAge() time.Duration {
	return time.Duration(h.RangeMaxAgeMs) * time.Millisecond
}

// LoadConfig loads configuration from the specified file path,
// applies defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file '%s': %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing config file '%s': %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued field with its reference default.
func ApplyDefaults(cfg *Config) {
	if cfg.RobotID == "" {
		cfg.RobotID = "rover"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Server.HTTPPort == 0 {
		cfg.Server.HTTPPort = 8080
	}

	m := &cfg.Motion
	if m.ListenAddress == "" {
		m.ListenAddress = ":9001"
	}
	if m.ControlTimeoutMs == 0 {
		m.ControlTimeoutMs = 1000
	}
	if m.PollIntervalMs == 0 {
		m.PollIntervalMs = 100
	}
	if m.SteerGain == 0 {
		m.SteerGain = 10
	}
	if m.MaxSteerDeg == 0 {
		m.MaxSteerDeg = 35
	}
	if m.SteerDeadbandDeg == 0 {
		m.SteerDeadbandDeg = 0.1
	}
	if m.LinearDeadband == 0 {
		m.LinearDeadband = 0.05
	}
	if m.DriveSpeed == 0 {
		m.DriveSpeed = 20
	}
	if m.SpeedScaling == "" {
		m.SpeedScaling = SpeedScalingFixed
	}
	if m.CameraLimitDeg == 0 {
		m.CameraLimitDeg = 35
	}

	s := &cfg.Sound
	if s.ListenAddress == "" {
		s.ListenAddress = ":9100"
	}
	if s.PollIntervalMs == 0 {
		s.PollIntervalMs = 500
	}
	if len(s.TTSCommand) == 0 {
		s.TTSCommand = []string{"espeak", "-v", "en-us"}
	}
	if len(s.HornCommand) == 0 {
		s.HornCommand = []string{"aplay", "-q", "sounds/car-double-horn.wav"}
	}

	t := &cfg.Telemetry
	if t.IntervalMs == 0 {
		t.IntervalMs = 100
	}
	if t.ZeroMQ.Topic == "" {
		t.ZeroMQ.Topic = "rover.telemetry"
	}
	if t.MQTT.Topic == "" {
		t.MQTT.Topic = "rover/" + cfg.RobotID + "/telemetry"
	}

	o := &cfg.Obstacle
	if o.DangerDistanceCm == 0 {
		o.DangerDistanceCm = 20
	}
	if o.BackoffMs == 0 {
		o.BackoffMs = 1000
	}
	if o.IdleIntervalMs == 0 {
		o.IdleIntervalMs = 200
	}

	h := &cfg.Hardware
	if h.Driver == "" {
		h.Driver = DriverSim
	}
	if h.ActuatorBaud == 0 {
		h.ActuatorBaud = 115200
	}
	if h.RangeBaud == 0 {
		h.RangeBaud = 115200
	}
	if h.RangeMaxAgeMs == 0 {
		h.RangeMaxAgeMs = 500
	}
	if h.Audio == "" {
		h.Audio = AudioSim
	}
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if c.Telemetry.TargetAddress == "" {
		return fmt.Errorf("missing required field in config: telemetry.target_address")
	}
	if c.Motion.ControlTimeoutMs < 0 || c.Motion.PollIntervalMs < 0 {
		return fmt.Errorf("invalid motion timing: control_timeout_ms=%d poll_interval_ms=%d",
			c.Motion.ControlTimeoutMs, c.Motion.PollIntervalMs)
	}
	if c.Sound.PollIntervalMs < 0 {
		return fmt.Errorf("invalid sound timing: poll_interval_ms=%d", c.Sound.PollIntervalMs)
	}
	if c.Telemetry.IntervalMs < 0 {
		return fmt.Errorf("invalid telemetry timing: interval_ms=%d", c.Telemetry.IntervalMs)
	}
	if c.Obstacle.BackoffMs < 0 || c.Obstacle.IdleIntervalMs < 0 {
		return fmt.Errorf("invalid obstacle timing: backoff_ms=%d idle_interval_ms=%d",
			c.Obstacle.BackoffMs, c.Obstacle.IdleIntervalMs)
	}
	if c.Hardware.RangeMaxAgeMs < 0 {
		return fmt.Errorf("invalid hardware timing: range_max_age_ms=%d", c.Hardware.RangeMaxAgeMs)
	}
	if c.Motion.MaxSteerDeg < 0 || c.Motion.CameraLimitDeg < 0 {
		return fmt.Errorf("invalid motion limits: max_steer_deg=%v camera_limit_deg=%v",
			c.Motion.MaxSteerDeg, c.Motion.CameraLimitDeg)
	}
	switch c.Motion.SpeedScaling {
	case SpeedScalingFixed, SpeedScalingProportional:
	default:
		return fmt.Errorf("invalid motion.speed_scaling '%s' (want %s or %s)",
			c.Motion.SpeedScaling, SpeedScalingFixed, SpeedScalingProportional)
	}
	switch c.Hardware.Driver {
	case DriverSim:
	case DriverSerial:
		if c.Hardware.ActuatorDevice == "" {
			return fmt.Errorf("missing required field in config: hardware.actuator_device")
		}
	default:
		return fmt.Errorf("invalid hardware.driver '%s'", c.Hardware.Driver)
	}
	switch c.Hardware.Audio {
	case AudioSim, AudioExec:
	default:
		return fmt.Errorf("invalid hardware.audio '%s'", c.Hardware.Audio)
	}
	if c.Telemetry.MQTT.QoS > 2 {
		return fmt.Errorf("invalid telemetry.mqtt.qos %d", c.Telemetry.MQTT.QoS)
	}
	return nil
}

// YAML renders the configuration back to YAML.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
