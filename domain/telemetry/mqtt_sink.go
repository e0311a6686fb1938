package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/open-teleop/rover/pkg/config"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

const (
	mqttConnectWait = 2 * time.Second
	mqttPublishWait = time.Second
)

var (
	ErrMQTTNotConnected   = errors.New("mqtt broker not connected")
	ErrMQTTPublishTimeout = errors.New("mqtt publish timed out")
)

// ConnectMQTT creates a client for the configured broker. The client keeps
// retrying in the background, so a broker that is down at startup does not
// hold up the rover.
func ConnectMQTT(cfg config.MQTTConfig, logger customlog.Logger) mqtt.Client {
	logger = logger.WithField("sink", "mqtt")

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "rover-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	opts.OnConnect = func(mqtt.Client) {
		logger.Infof("Connected to MQTT broker %s", cfg.Broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warnf("MQTT connection lost: %v", err)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectWait) {
		logger.Warnf("MQTT broker %s not reachable yet, retrying in background", cfg.Broker)
	} else if err := token.Error(); err != nil {
		logger.Warnf("MQTT connect failed: %v", err)
	}
	return client
}

// MQTTSink publishes JSON envelopes to an MQTT topic.
type MQTTSink struct {
	client  mqtt.Client
	topic   string
	qos     byte
	robotID string
}

// NewMQTTSink wraps a connected (or connecting) client.
func NewMQTTSink(client mqtt.Client, topic string, qos byte, robotID string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, qos: qos, robotID: robotID}
}

func (s *MQTTSink) Name() string {
	return "mqtt"
}

func (s *MQTTSink) Publish(at time.Time, reading protocol.TelemetryReading) error {
	if !s.client.IsConnectionOpen() {
		return ErrMQTTNotConnected
	}

	payload, err := json.Marshal(Envelope{RobotID: s.robotID, Timestamp: at, TelemetryReading: reading})
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}

	token := s.client.Publish(s.topic, s.qos, false, payload)
	if !token.WaitTimeout(mqttPublishWait) {
		return ErrMQTTPublishTimeout
	}
	return token.Error()
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}
