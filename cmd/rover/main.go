package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/open-teleop/rover/pkg/config"
	customlog "github.com/open-teleop/rover/pkg/log"
)

func main() {
	configDir := flag.String("config", "", "Directory containing "+config.BootstrapFileName+
		" (default $"+config.EnvConfigDir+" or ./config)")
	flag.Parse()

	os.Exit(run(config.ResolveConfigDir(*configDir)))
}

func run(configDir string) int {
	cfg, err := config.LoadBootstrapConfig(configDir)
	if err != nil {
		log.Printf("FATAL: Failed to load bootstrap configuration: %v", err)
		return 1
	}

	logger, err := customlog.NewLogrusLogger(cfg.Logging.Level, cfg.Logging.LogPath)
	if err != nil {
		log.Printf("FATAL: Failed to initialize logger: %v", err)
		return 1
	}
	logger = logger.WithField("robot", cfg.RobotID)
	logger.Infof("Loaded configuration from %s", configDir)

	r, err := newRover(cfg, logger)
	if err != nil {
		var startupErr *StartupError
		if errors.As(err, &startupErr) {
			logger.Errorf("Cannot start %s: %v", startupErr.Component, startupErr.Err)
		} else {
			logger.Errorf("Cannot start rover: %v", err)
		}
		return 1
	}

	r.watchSignals()
	r.run()
	return 0
}
