package telemetry

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/transport"
)

// UDPSink sends each reading as one JSON datagram in the fixed
// {ultrasonic_distance, uwb_location, imu} shape.
type UDPSink struct {
	sender *transport.UDPSender
}

// NewUDPSink dials target.
func NewUDPSink(target string) (*UDPSink, error) {
	sender, err := transport.DialUDP(target)
	if err != nil {
		return nil, err
	}
	return &UDPSink{sender: sender}, nil
}

func (s *UDPSink) Name() string {
	return "udp"
}

func (s *UDPSink) Publish(_ time.Time, reading protocol.TelemetryReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to encode reading: %w", err)
	}
	return s.sender.Send(payload)
}

func (s *UDPSink) Target() string {
	return s.sender.Target()
}

func (s *UDPSink) Close() error {
	return s.sender.Close()
}
