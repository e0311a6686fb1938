// Package transport wraps the UDP sockets used by the rover's datagram channels.
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

// Common errors
var (
	// ErrTimeout is returned when no datagram arrived within the read timeout.
	// It is expected steady-state behaviour, not a failure.
	ErrTimeout = errors.New("receive timeout")
	ErrClosed  = errors.New("socket closed")
)

// PacketSource is a datagram socket read with a bounded wait.
type PacketSource interface {
	Receive(buf []byte, timeout time.Duration) (int, net.Addr, error)
}

// UDPListener is a bound UDP socket read with per-call deadlines.
type UDPListener struct {
	conn *net.UDPConn
}

// ListenUDP binds address (e.g. ":9001").
func ListenUDP(address string) (*UDPListener, error) {
	addr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", address, err)
	}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind %s: %w", address, err)
	}
	return &UDPListener{conn: conn}, nil
}

// Receive reads one datagram into buf, waiting at most timeout.
// A datagram larger than buf is truncated.
func (l *UDPListener) Receive(buf []byte, timeout time.Duration) (int, net.Addr, error) {
	if err := l.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		if errors.Is(err, net.ErrClosed) {
			return 0, nil, ErrClosed
		}
		return 0, nil, fmt.Errorf("failed to set read deadline: %w", err)
	}
	n, addr, err := l.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil, ErrTimeout
		}
		if errors.Is(err, net.ErrClosed) {
			return 0, nil, ErrClosed
		}
		return 0, nil, err
	}
	return n, addr, nil
}

// LocalAddr returns the bound address.
func (l *UDPListener) LocalAddr() net.Addr {
	return l.conn.LocalAddr()
}

// Close releases the socket.
func (l *UDPListener) Close() error {
	return l.conn.Close()
}

// UDPSender sends datagrams to one fixed remote address.
type UDPSender struct {
	conn   *net.UDPConn
	target string
}

// DialUDP prepares a sender for target ("host:port"). No packets are sent.
func DialUDP(target string) (*UDPSender, error) {
	addr, err := net.ResolveUDPAddr("udp", target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", target, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", target, err)
	}
	return &UDPSender{conn: conn, target: target}, nil
}

// Send writes one datagram.
func (s *UDPSender) Send(payload []byte) error {
	_, err := s.conn.Write(payload)
	return err
}

// Target returns the configured remote address.
func (s *UDPSender) Target() string {
	return s.target
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	return s.conn.Close()
}
