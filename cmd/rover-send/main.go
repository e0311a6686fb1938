// Command rover-send is a bench tool that sends motion and sound packets to
// a rover and prints the telemetry it publishes.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/protocol"
	"github.com/open-teleop/rover/pkg/transport"
)

const usage = `usage: rover-send <command> [flags]

commands:
  motion   send a motion packet (-linear, -angular, optional -yaw/-pitch)
  say      speak the remaining arguments
  horn     play the horn
  watch    print telemetry datagrams received on -listen
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	logger := customlog.NewWriterLogger("info", os.Stderr)

	var err error
	switch os.Args[1] {
	case "motion":
		err = runMotion(os.Args[2:], logger)
	case "say", "horn":
		err = runSound(os.Args[1], os.Args[2:], logger)
	case "watch":
		err = runWatch(os.Args[2:], logger)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Errorf("%v", err)
		os.Exit(1)
	}
}

func runMotion(args []string, logger customlog.Logger) error {
	fs := flag.NewFlagSet("motion", flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:9001", "Rover motion address")
	linear := fs.Float64("linear", 0, "Linear intent (sign selects direction)")
	angular := fs.Float64("angular", 0, "Angular intent (x10 = steering degrees)")
	yaw := fs.Float64("yaw", math.NaN(), "Camera yaw in degrees (omit to leave unchanged)")
	pitch := fs.Float64("pitch", math.NaN(), "Camera pitch in degrees (requires -yaw)")
	repeat := fs.Int("repeat", 1, "Number of packets to send")
	interval := fs.Duration("interval", 100*time.Millisecond, "Delay between repeated packets")
	fs.Parse(args)

	cmd, err := buildMotion(*linear, *angular, *yaw, *pitch)
	if err != nil {
		return err
	}

	sender, err := transport.DialUDP(*addr)
	if err != nil {
		return err
	}
	defer sender.Close()

	packet := protocol.EncodeMotion(cmd)
	for i := 0; i < *repeat; i++ {
		if i > 0 {
			time.Sleep(*interval)
		}
		if err := sender.Send(packet); err != nil {
			return err
		}
	}
	logger.Infof("Sent %d x %d-byte packet (%v) to %s", *repeat, len(packet), cmd, *addr)
	return nil
}

// buildMotion assembles a command; NaN camera angles mean "not sent".
func buildMotion(linear, angular, yaw, pitch float64) (protocol.MotionCommand, error) {
	cmd := protocol.MotionCommand{Linear: float32(linear), Angular: float32(angular)}
	if !math.IsNaN(pitch) && math.IsNaN(yaw) {
		return cmd, errors.New("-pitch requires -yaw")
	}
	if !math.IsNaN(yaw) {
		cmd.CameraYaw = protocol.Float32(float32(yaw))
	}
	if !math.IsNaN(pitch) {
		cmd.CameraPitch = protocol.Float32(float32(pitch))
	}
	return cmd, nil
}

func runSound(kind string, args []string, logger customlog.Logger) error {
	fs := flag.NewFlagSet(kind, flag.ExitOnError)
	addr := fs.String("addr", "127.0.0.1:9100", "Rover sound address")
	fs.Parse(args)

	msg := protocol.HornCommand
	if kind == "say" {
		text := strings.Join(fs.Args(), " ")
		if text == "" {
			return errors.New("say needs some text")
		}
		msg = protocol.SayPrefix + text
	}

	sender, err := transport.DialUDP(*addr)
	if err != nil {
		return err
	}
	defer sender.Close()

	if err := sender.Send([]byte(msg)); err != nil {
		return err
	}
	logger.Infof("Sent %q to %s", msg, *addr)
	return nil
}

func runWatch(args []string, logger customlog.Logger) error {
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	listen := fs.String("listen", ":5005", "Address to receive telemetry on")
	fs.Parse(args)

	listener, err := transport.ListenUDP(*listen)
	if err != nil {
		return err
	}
	defer listener.Close()
	logger.Infof("Waiting for telemetry on %s", listener.LocalAddr())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	buf := make([]byte, protocol.MaxPacketSize*4)
	for {
		select {
		case <-quit:
			return nil
		default:
		}

		n, from, err := listener.Receive(buf, 500*time.Millisecond)
		if errors.Is(err, transport.ErrTimeout) {
			continue
		}
		if err != nil {
			return err
		}

		var reading protocol.TelemetryReading
		if err := json.Unmarshal(buf[:n], &reading); err != nil {
			logger.Warnf("Bad telemetry from %v: %v", from, err)
			continue
		}
		fmt.Printf("%s range=%.1f uwb=(%.2f,%.2f,%.2f) accel=%v\n",
			time.Now().Format("15:04:05.000"), reading.UltrasonicDistance,
			reading.UWBLocation.X, reading.UWBLocation.Y, reading.UWBLocation.Z, reading.IMU.Accel)
	}
}
