// Package cmd implements the portcullis subcommands.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"grimm.is/portcullis/internal/config"
	"grimm.is/portcullis/internal/ctlplane"
	"grimm.is/portcullis/internal/firewall"
	"grimm.is/portcullis/internal/jail"
	"grimm.is/portcullis/internal/logging"
	"grimm.is/portcullis/internal/metrics"
)

// RunStart runs the privileged daemon in the foreground until SIGINT or
// SIGTERM, then drains every tracked hole before exiting.
func RunStart(configFile string) error {
	cfg, err := config.LoadFile(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.New(logging.Config{
		Level: parseLevel(cfg.Log.Level),
		JSON:  cfg.Log.JSON,
	})
	logging.SetDefault(logger)

	runner, err := jail.NewRunner(jail.Config{User: cfg.Exec.User}, logger)
	if err != nil {
		return fmt.Errorf("failed to create tool runner: %w", err)
	}

	fw := firewall.NewManager(runner, logger, firewall.ToolPaths{
		IPTables:  cfg.Tools.IPTables,
		IP6Tables: cfg.Tools.IP6Tables,
		IP:        cfg.Tools.IP,
	})

	srv := ctlplane.NewServer(fw, logger, cfg.Control.SocketPath)
	if err := srv.Start(); err != nil {
		return err
	}

	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			logger.Info("metrics listening", "addr", cfg.Metrics.Listen)
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	logger.Info("daemon started", "config", configFile)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig.String())

	// Stop accepting RPC first so no new holes appear during the drain.
	srv.Stop()
	fw.Close()
	return nil
}

func parseLevel(s string) logging.Level {
	switch strings.ToLower(s) {
	case "debug":
		return logging.LevelDebug
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}
