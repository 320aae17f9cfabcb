package main

import (
	"flag"
	"log"
	"runtime"

	"postfx/internal/logger"
	"postfx/internal/viewer"
	"postfx/pkg/config"
)

func init() {
	// GLFW requires the program to be running on the main thread
	runtime.LockOSThread()
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, loadErr := config.LoadConfig(*configPath)
	if loadErr != nil {
		cfg = config.DefaultConfig()
	}

	appLog, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer appLog.Close()

	if loadErr != nil {
		appLog.Warnf("Using default configuration: %v", loadErr)
	}
	appLog.Info("Starting postfx viewer...")

	v, err := viewer.New(cfg, appLog)
	if err != nil {
		appLog.Fatalf("Failed to initialize viewer: %v", err)
	}

	appLog.Info("Viewer initialized, starting render loop...")
	if err := v.Run(); err != nil {
		appLog.Fatalf("Render loop stopped: %v", err)
	}
}

func newLogger(cfg config.LoggingConfig) (*logger.Logger, error) {
	if cfg.File == "" {
		return logger.NewLogger(cfg.Level), nil
	}
	return logger.NewMultiLogger(cfg.Level, cfg.File)
}
