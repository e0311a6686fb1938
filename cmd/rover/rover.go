package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/open-teleop/rover/domain/diagnostic"
	"github.com/open-teleop/rover/domain/motion"
	"github.com/open-teleop/rover/domain/obstacle"
	"github.com/open-teleop/rover/domain/sound"
	"github.com/open-teleop/rover/domain/telemetry"
	"github.com/open-teleop/rover/pkg/api"
	"github.com/open-teleop/rover/pkg/config"
	customlog "github.com/open-teleop/rover/pkg/log"
	"github.com/open-teleop/rover/pkg/shutdown"
	"github.com/open-teleop/rover/pkg/transport"
	"github.com/open-teleop/rover/pkg/zeromq"
)

const serverShutdownTimeout = 5 * time.Second

// StartupError is returned when a required resource cannot be set up.
type StartupError struct {
	Component string
	Err       error
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed (%s): %v", e.Component, e.Err)
}

func (e *StartupError) Unwrap() error {
	return e.Err
}

// rover owns every resource of one process run.
type rover struct {
	cfg    *config.Config
	logger customlog.Logger
	stop   *shutdown.Coordinator

	hw         *facades
	supervisor *motion.Supervisor
	listener   *sound.Listener
	publisher  *telemetry.Publisher
	monitor    *obstacle.Monitor
	server     *api.Server
	hub        *telemetry.Hub

	motionConn *transport.UDPListener
	soundConn  *transport.UDPListener
	relay      *transport.UDPSender
	sinks      []telemetry.Sink
}

// newRover builds the hardware facades, binds every socket and wires the
// loops. On failure after the actuator exists, the robot is put in the
// neutral pose before the error is returned.
func newRover(cfg *config.Config, logger customlog.Logger) (r *rover, err error) {
	r = &rover{
		cfg:    cfg,
		logger: logger,
		stop:   shutdown.NewCoordinator(logger),
	}

	r.hw, err = newFacades(cfg, logger)
	if err != nil {
		return nil, &StartupError{Component: "hardware", Err: err}
	}
	r.supervisor = motion.NewSupervisor(r.hw.actuator, motion.PolicyFromConfig(cfg.Motion), r.stop, logger)

	defer func() {
		if err != nil {
			r.supervisor.Neutralize()
			r.closeResources()
			r = nil
		}
	}()

	if r.motionConn, err = transport.ListenUDP(cfg.Motion.ListenAddress); err != nil {
		return r, &StartupError{Component: "motion listener", Err: err}
	}
	logger.Infof("Motion listener on %s", r.motionConn.LocalAddr())

	if r.soundConn, err = transport.ListenUDP(cfg.Sound.ListenAddress); err != nil {
		return r, &StartupError{Component: "sound listener", Err: err}
	}
	logger.Infof("Sound listener on %s", r.soundConn.LocalAddr())

	if err = r.buildSinks(); err != nil {
		return r, err
	}

	r.listener = sound.NewListener(r.soundConn, r.hw.audio, cfg.Sound.PollInterval(), r.stop, logger)
	r.publisher = telemetry.NewPublisher(
		cfg.RobotID,
		telemetry.Sensors{Range: r.hw.rng, Inertial: r.hw.inertial, Position: r.hw.position},
		r.sinks,
		cfg.Telemetry.Interval(),
		r.stop,
		logger,
	)
	if !cfg.Obstacle.Disabled {
		r.monitor = obstacle.NewMonitor(r.hw.rng, r.hw.audio, obstacle.Settings{
			DangerDistanceCm: cfg.Obstacle.DangerDistanceCm,
			Backoff:          cfg.Obstacle.Backoff(),
			IdleInterval:     cfg.Obstacle.IdleInterval(),
		}, r.stop, logger)
	}

	if !cfg.Server.Disabled {
		if err = r.buildServer(); err != nil {
			return r, err
		}
	}

	return r, nil
}

// buildSinks creates the telemetry sinks. The UDP sink is required; the
// others are enabled by their config sections.
func (r *rover) buildSinks() error {
	tcfg := r.cfg.Telemetry

	udpSink, err := telemetry.NewUDPSink(tcfg.TargetAddress)
	if err != nil {
		return &StartupError{Component: "telemetry target", Err: err}
	}
	r.sinks = append(r.sinks, udpSink)
	r.logger.Infof("Telemetry target %s", udpSink.Target())

	if tcfg.ZeroMQ.PublishBindAddress != "" {
		pub, err := zeromq.NewPublisher(tcfg.ZeroMQ.PublishBindAddress, tcfg.ZeroMQ.Topic, r.cfg.RobotID, r.logger)
		if err != nil {
			return &StartupError{Component: "zeromq publisher", Err: err}
		}
		r.sinks = append(r.sinks, pub)
	}

	if tcfg.MQTT.Broker != "" {
		client := telemetry.ConnectMQTT(tcfg.MQTT, r.logger)
		r.sinks = append(r.sinks, telemetry.NewMQTTSink(client, tcfg.MQTT.Topic, tcfg.MQTT.QoS, r.cfg.RobotID))
	}

	if !r.cfg.Server.Disabled {
		r.hub = telemetry.NewHub(r.cfg.RobotID, r.logger)
		r.sinks = append(r.sinks, r.hub)
	}
	return nil
}

func (r *rover) buildServer() error {
	relay, err := transport.DialUDP(loopbackAddress(r.motionConn.LocalAddr()))
	if err != nil {
		return &StartupError{Component: "control relay", Err: err}
	}
	r.relay = relay

	sources := diagnostic.Sources{
		Motion:    r.supervisor,
		Sound:     r.listener,
		Telemetry: r.publisher,
		Stop:      r.stop,
	}
	if r.monitor != nil {
		sources.Obstacle = r.monitor
	}

	r.server = api.NewServer(api.Options{
		Config:     r.cfg,
		Status:     diagnostic.NewStatusService(r.cfg.RobotID, sources),
		Hub:        r.hub,
		Control:    relay,
		AccessLogs: r.cfg.Logging.Level == "debug",
	}, r.logger)
	return nil
}

// loopbackAddress turns a wildcard listen address into one the relay can
// send to.
func loopbackAddress(addr net.Addr) string {
	udp, ok := addr.(*net.UDPAddr)
	if !ok {
		return addr.String()
	}
	host := "127.0.0.1"
	if udp.IP != nil && !udp.IP.IsUnspecified() {
		host = udp.IP.String()
	}
	return net.JoinHostPort(host, strconv.Itoa(udp.Port))
}

// run starts every loop and blocks until they have all exited.
func (r *rover) run() {
	var wg sync.WaitGroup
	start := func(name string, loop func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if p := recover(); p != nil {
					r.logger.Errorf("%s loop panicked: %v", name, p)
					r.stop.RequestStop(name + " loop panicked")
				}
			}()
			loop()
		}()
	}

	start("motion", func() { r.supervisor.Run(r.motionConn) })
	start("sound", r.listener.Run)
	start("telemetry", r.publisher.Run)
	if r.monitor != nil {
		start("obstacle", r.monitor.Run)
	}

	if r.server != nil {
		errCh := r.server.Start(":" + strconv.Itoa(r.cfg.Server.HTTPPort))
		go func() {
			if err, ok := <-errCh; ok && err != nil {
				r.logger.Errorf("Status API unavailable: %v", err)
			}
		}()
	}

	<-r.stop.Done()
	r.logger.Infof("Stop requested (%s), waiting for loops", r.stop.Reason())
	wg.Wait()
	r.shutdown()
}

// watchSignals turns SIGINT/SIGTERM into a stop request. It does nothing
// else; the neutral reset happens on the supervisor goroutine.
func (r *rover) watchSignals() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigCh)
		select {
		case sig := <-sigCh:
			r.stop.RequestStop("signal " + sig.String())
		case <-r.stop.Done():
		}
	}()
}

func (r *rover) shutdown() {
	if r.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
		defer cancel()
		if err := r.server.Shutdown(ctx); err != nil {
			r.logger.Errorf("%v", err)
		}
	}
	r.closeResources()
	r.logger.Infof("Rover stopped")
}

func (r *rover) closeResources() {
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && !errors.Is(err, zeromq.ErrPublisherClosed) {
			r.logger.Warnf("Closing telemetry sink %s: %v", sink.Name(), err)
		}
	}
	r.sinks = nil
	if r.relay != nil {
		r.relay.Close()
	}
	if r.motionConn != nil {
		r.motionConn.Close()
	}
	if r.soundConn != nil {
		r.soundConn.Close()
	}
	if r.hw != nil {
		r.hw.Close()
	}
}
