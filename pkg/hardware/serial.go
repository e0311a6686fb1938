package hardware

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	customlog "github.com/open-teleop/rover/pkg/log"
	serial "go.bug.st/serial"
)

// Line protocol spoken with the motor/servo microcontroller.
// Commands are newline terminated; the board streams "RANGE <cm>" lines back.
const (
	cmdSteer    = "STEER"
	cmdForward  = "FWD"
	cmdBackward = "BACK"
	cmdStop     = "STOP"
	cmdPan      = "PAN"
	cmdTilt     = "TILT"
	rangePrefix = "RANGE"
)

// OpenSerialPort opens a serial device with the given baud rate.
func OpenSerialPort(device string, baud int) (serial.Port, error) {
	p, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	return p, nil
}

// SerialActuator implements Actuator by writing one command line per call.
type SerialActuator struct {
	port   io.Writer
	logger customlog.Logger
	mu     sync.Mutex
}

var _ Actuator = (*SerialActuator)(nil)

// NewSerialActuator writes actuator commands to port. The caller owns the port.
func NewSerialActuator(port io.Writer, logger customlog.Logger) *SerialActuator {
	return &SerialActuator{port: port, logger: logger.WithField("driver", "serial")}
}

func (a *SerialActuator) writeLine(line string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if _, err := io.WriteString(a.port, line+"\n"); err != nil {
		return fmt.Errorf("serial write %q: %w", line, err)
	}
	a.logger.Debugf("-> %s", line)
	return nil
}

func (a *SerialActuator) SetSteeringAngle(deg float64) error {
	return a.writeLine(fmt.Sprintf("%s %.1f", cmdSteer, deg))
}

func (a *SerialActuator) DriveForward(speed float64) error {
	return a.writeLine(fmt.Sprintf("%s %.1f", cmdForward, speed))
}

func (a *SerialActuator) DriveBackward(speed float64) error {
	return a.writeLine(fmt.Sprintf("%s %.1f", cmdBackward, speed))
}

func (a *SerialActuator) Stop() error {
	return a.writeLine(cmdStop)
}

func (a *SerialActuator) SetCameraPan(deg float64) error {
	return a.writeLine(fmt.Sprintf("%s %.1f", cmdPan, deg))
}

func (a *SerialActuator) SetCameraTilt(deg float64) error {
	return a.writeLine(fmt.Sprintf("%s %.1f", cmdTilt, deg))
}

// ParseRangeLine parses "RANGE <cm>".
func ParseRangeLine(line string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) != 2 || fields[0] != rangePrefix {
		return 0, fmt.Errorf("not a range line: %q", line)
	}
	cm, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid range value %q: %w", fields[1], err)
	}
	if math.IsNaN(cm) || math.IsInf(cm, 0) {
		return 0, fmt.Errorf("non-finite range %q", fields[1])
	}
	if cm < 0 {
		return 0, fmt.Errorf("negative range %v", cm)
	}
	return cm, nil
}

// SerialRangeSensor keeps the latest streamed range sample.
// Samples older than maxAge are reported as unavailable.
type SerialRangeSensor struct {
	logger customlog.Logger
	maxAge time.Duration
	now    func() time.Time

	mu     sync.Mutex
	last   float64
	lastAt time.Time
	done   chan struct{}
}

var _ RangeSensor = (*SerialRangeSensor)(nil)

// NewSerialRangeSensor starts reading lines from r in the background.
// Reading stops when r returns an error (for example when the port is closed).
func NewSerialRangeSensor(r io.Reader, maxAge time.Duration, logger customlog.Logger) *SerialRangeSensor {
	s := &SerialRangeSensor{
		logger: logger.WithField("driver", "serial-range"),
		maxAge: maxAge,
		now:    time.Now,
		done:   make(chan struct{}),
	}
	go s.readLoop(r)
	return s
}

func (s *SerialRangeSensor) readLoop(r io.Reader) {
	defer close(s.done)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		cm, err := ParseRangeLine(line)
		if err != nil {
			s.logger.Debugf("Ignoring serial line: %v", err)
			continue
		}
		s.mu.Lock()
		s.last = cm
		s.lastAt = s.now()
		s.mu.Unlock()
	}
	if err := scanner.Err(); err != nil {
		s.logger.Warnf("Range reader stopped: %v", err)
	}
}

// ReadRangeCm returns the latest sample or ErrUnavailable.
func (s *SerialRangeSensor) ReadRangeCm() (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastAt.IsZero() || s.now().Sub(s.lastAt) > s.maxAge {
		return 0, ErrUnavailable
	}
	return s.last, nil
}

// Done is closed once the background reader has exited.
func (s *SerialRangeSensor) Done() <-chan struct{} {
	return s.done
}
