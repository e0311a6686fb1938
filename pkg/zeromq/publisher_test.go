package zeromq

import (
	"testing"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

func TestPublisherDeliversToSubscriber(t *testing.T) {
	pub, err := NewPublisher("tcp://127.0.0.1:*", "rover.telemetry", "rover", customlog.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	defer pub.Close()

	sub, err := zmq4.NewSocket(zmq4.SUB)
	if err != nil {
		t.Fatalf("Failed to create SUB socket: %v", err)
	}
	defer sub.Close()
	sub.SetLinger(0)
	sub.SetRcvtimeo(50 * time.Millisecond)
	if err := sub.SetSubscribe("rover.telemetry"); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := sub.Connect(pub.Endpoint()); err != nil {
		t.Fatalf("Failed to connect to %s: %v", pub.Endpoint(), err)
	}

	reading := protocol.NewUnavailableReading()
	reading.UltrasonicDistance = 33

	// PUB drops messages until the subscription propagates, so keep
	// publishing until one arrives.
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if err := pub.Publish(time.Now(), reading); err != nil {
			t.Fatalf("Publish failed: %v", err)
		}
		frames, err := sub.RecvMessageBytes(0)
		if err != nil {
			continue
		}
		if len(frames) != 2 {
			t.Fatalf("Expected 2 frames, got %d", len(frames))
		}
		if string(frames[0]) != "rover.telemetry" {
			t.Errorf("Expected topic rover.telemetry, got %q", frames[0])
		}
		_, _, got, err := DecodeReading(frames[1])
		if err != nil {
			t.Fatalf("DecodeReading failed: %v", err)
		}
		if got.UltrasonicDistance != 33 || got.UWBLocation.X != protocol.Unavailable {
			t.Errorf("Unexpected reading: %+v", got)
		}
		return
	}
	t.Fatal("No telemetry received from publisher")
}

func TestPublishAfterClose(t *testing.T) {
	pub, err := NewPublisher("tcp://127.0.0.1:*", "rover.telemetry", "rover", customlog.NewDiscardLogger())
	if err != nil {
		t.Fatalf("NewPublisher failed: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := pub.Publish(time.Now(), protocol.NewUnavailableReading()); err != ErrPublisherClosed {
		t.Errorf("Expected ErrPublisherClosed, got %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("Second Close should be a no-op, got %v", err)
	}
}
