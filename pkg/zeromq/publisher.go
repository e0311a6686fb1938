// Package zeromq publishes telemetry on a ZeroMQ PUB socket as
// topic-prefixed multipart messages.
package zeromq

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/pebbe/zmq4"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
)

// ErrPublisherClosed is returned by Publish after Close.
var ErrPublisherClosed = errors.New("zeromq publisher is closed")

// Publisher owns a bound PUB socket.
type Publisher struct {
	ctx      *zmq4.Context
	socket   *zmq4.Socket
	endpoint string
	topic    string
	robotID  string
	logger   customlog.Logger

	mu      sync.Mutex
	running bool
}

// NewPublisher creates a PUB socket bound to address. Messages are sent
// as two frames: topic, then the flatbuffer payload.
func NewPublisher(address, topic, robotID string, logger customlog.Logger) (*Publisher, error) {
	ctx, err := zmq4.NewContext()
	if err != nil {
		return nil, fmt.Errorf("failed to create ZMQ context: %w", err)
	}

	socket, err := ctx.NewSocket(zmq4.PUB)
	if err != nil {
		ctx.Term()
		return nil, fmt.Errorf("failed to create PUB socket: %w", err)
	}

	// Linger 0 so Close never blocks on undelivered telemetry.
	if err := socket.SetLinger(0); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set linger option: %w", err)
	}
	if err := socket.SetSndtimeo(100 * time.Millisecond); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to set send timeout: %w", err)
	}

	if err := socket.Bind(address); err != nil {
		socket.Close()
		ctx.Term()
		return nil, fmt.Errorf("failed to bind to %s: %w", address, err)
	}

	endpoint, err := socket.GetLastEndpoint()
	if err != nil {
		endpoint = address
	}

	logger = logger.WithField("sink", "zeromq")
	logger.Infof("Telemetry publisher bound on %s (topic %q)", endpoint, topic)

	return &Publisher{
		ctx:      ctx,
		socket:   socket,
		endpoint: endpoint,
		topic:    topic,
		robotID:  robotID,
		logger:   logger,
		running:  true,
	}, nil
}

// Endpoint returns the address the socket is actually bound to.
func (p *Publisher) Endpoint() string {
	return p.endpoint
}

func (p *Publisher) Name() string {
	return "zeromq"
}

// Publish sends one reading.
func (p *Publisher) Publish(at time.Time, reading protocol.TelemetryReading) error {
	return p.PublishMessage(p.topic, EncodeReading(p.robotID, at, reading))
}

// PublishMessage sends a raw payload under topic.
func (p *Publisher) PublishMessage(topic string, message []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return ErrPublisherClosed
	}

	if _, err := p.socket.Send(topic, zmq4.SNDMORE); err != nil {
		return fmt.Errorf("failed to send topic: %w", err)
	}
	if _, err := p.socket.SendBytes(message, 0); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Close closes the socket and terminates the context.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false

	if err := p.socket.Close(); err != nil {
		p.logger.Warnf("Error closing PUB socket: %v", err)
	}
	if err := p.ctx.Term(); err != nil {
		return fmt.Errorf("failed to terminate ZMQ context: %w", err)
	}
	p.logger.Infof("Telemetry publisher closed")
	return nil
}
