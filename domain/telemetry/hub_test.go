package telemetry

import (
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	gorilla "github.com/gorilla/websocket"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

func startHubServer(t *testing.T, hub *Hub) string {
	t.Helper()
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Get("/ws/telemetry", websocket.New(hub.Handler))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	go app.Listener(ln)
	t.Cleanup(func() {
		hub.Close()
		app.Shutdown()
	})
	return "ws://" + ln.Addr().String() + "/ws/telemetry"
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, have %d", n, hub.ClientCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHubBroadcastsReadings(t *testing.T) {
	hub := NewHub("rover", customlog.NewDiscardLogger())
	url := startHubServer(t, hub)

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	defer conn.Close()
	waitForClients(t, hub, 1)

	reading := protocol.NewUnavailableReading()
	reading.UltrasonicDistance = 19
	if err := hub.Publish(time.Now(), reading); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage failed: %v", err)
	}
	if mt != gorilla.TextMessage {
		t.Errorf("Expected text message, got %d", mt)
	}
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if env.RobotID != "rover" || env.UltrasonicDistance != 19 {
		t.Errorf("Unexpected envelope: %+v", env)
	}
}

func TestHubRemovesDisconnectedClient(t *testing.T) {
	hub := NewHub("rover", customlog.NewDiscardLogger())
	url := startHubServer(t, hub)

	conn, _, err := gorilla.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	waitForClients(t, hub, 1)

	conn.Close()
	waitForClients(t, hub, 0)
}
