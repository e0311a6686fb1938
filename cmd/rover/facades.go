package main

import (
	"fmt"
	"io"

	"github.com/open-teleop/rover/pkg/config"
	"github.com/open-teleop/rover/pkg/hardware"
	customlog "github.com/open-teleop/rover/pkg/log"
)

// facades are the hardware collaborators handed to the loops. Nil sensors
// are reported as unavailable.
type facades struct {
	actuator hardware.Actuator
	rng      hardware.RangeSensor
	inertial hardware.InertialSensor
	position hardware.PositionSensor
	audio    hardware.Audio
	closers  []io.Closer
}

func (f *facades) Close() {
	for i := len(f.closers) - 1; i >= 0; i-- {
		f.closers[i].Close()
	}
}

// newFacades is replaced in tests.
var newFacades = buildFacades

// buildFacades constructs the drivers selected in the hardware section.
func buildFacades(cfg *config.Config, logger customlog.Logger) (*facades, error) {
	f := &facades{}
	hw := cfg.Hardware

	switch hw.Driver {
	case config.DriverSerial:
		port, err := hardware.OpenSerialPort(hw.ActuatorDevice, hw.ActuatorBaud)
		if err != nil {
			return nil, err
		}
		f.closers = append(f.closers, port)
		f.actuator = hardware.NewSerialActuator(port, logger)

		// The range sensor may share the actuator's serial link.
		var rangePort io.Reader = port
		if hw.RangeDevice != "" && hw.RangeDevice != hw.ActuatorDevice {
			rp, err := hardware.OpenSerialPort(hw.RangeDevice, hw.RangeBaud)
			if err != nil {
				f.Close()
				return nil, err
			}
			f.closers = append(f.closers, rp)
			rangePort = rp
		}
		f.rng = hardware.NewSerialRangeSensor(rangePort, hw.RangeMaxAge(), logger)
		logger.Infof("Using serial hardware on %s", hw.ActuatorDevice)
	case config.DriverSim:
		robot := hardware.NewSimRobot(logger)
		f.actuator = robot
		f.rng = robot
		f.inertial = robot
		f.position = robot
		logger.Infof("Using simulated hardware")
	default:
		return nil, fmt.Errorf("unknown hardware driver '%s'", hw.Driver)
	}

	switch hw.Audio {
	case config.AudioExec:
		f.audio = hardware.NewExecAudio(cfg.Sound.TTSCommand, cfg.Sound.HornCommand, logger)
	default:
		f.audio = hardware.NewSimAudio(logger)
	}

	return f, nil
}
