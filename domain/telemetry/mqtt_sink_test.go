package telemetry

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/open-teleop/rover/pkg/protocol"
)

type fakeToken struct {
	mqtt.Token
	err error
}

func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

// fakeClient implements the parts of mqtt.Client the sink uses.
type fakeClient struct {
	mqtt.Client
	connected    bool
	publishErr   error
	topic        string
	qos          byte
	payload      []byte
	disconnected bool
}

func (c *fakeClient) IsConnectionOpen() bool { return c.connected }

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.topic = topic
	c.qos = qos
	c.payload = payload.([]byte)
	return &fakeToken{err: c.publishErr}
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestMQTTSinkPublishesEnvelope(t *testing.T) {
	client := &fakeClient{connected: true}
	sink := NewMQTTSink(client, "rover/r1/telemetry", 1, "r1")

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reading := protocol.NewUnavailableReading()
	reading.UltrasonicDistance = 80
	if err := sink.Publish(at, reading); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if client.topic != "rover/r1/telemetry" || client.qos != 1 {
		t.Errorf("Unexpected topic/qos: %s/%d", client.topic, client.qos)
	}
	var env Envelope
	if err := json.Unmarshal(client.payload, &env); err != nil {
		t.Fatalf("Invalid payload: %v", err)
	}
	if env.RobotID != "r1" || !env.Timestamp.Equal(at) || env.UltrasonicDistance != 80 {
		t.Errorf("Unexpected envelope: %+v", env)
	}

	sink.Close()
	if !client.disconnected {
		t.Error("Expected Close to disconnect the client")
	}
}

func TestMQTTSinkErrors(t *testing.T) {
	sink := NewMQTTSink(&fakeClient{}, "t", 0, "r1")
	if err := sink.Publish(time.Now(), protocol.NewUnavailableReading()); !errors.Is(err, ErrMQTTNotConnected) {
		t.Errorf("Expected ErrMQTTNotConnected, got %v", err)
	}

	brokerErr := errors.New("broker rejected")
	sink = NewMQTTSink(&fakeClient{connected: true, publishErr: brokerErr}, "t", 0, "r1")
	if err := sink.Publish(time.Now(), protocol.NewUnavailableReading()); !errors.Is(err, brokerErr) {
		t.Errorf("Expected broker error, got %v", err)
	}
}
