// Command kvserver runs the RESP-compatible key-value server (spec.md
// §6's CLI surface): zero args run with defaults, one arg names a config
// file, two or more is a usage error.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-resp/kvserver/internal/config"
	"github.com/go-resp/kvserver/internal/logger"
	"github.com/go-resp/kvserver/internal/server"
	"github.com/go-resp/kvserver/internal/snapshot"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, exitCode := loadConfig(args)
	if cfg == nil {
		return exitCode
	}

	log, err := logger.New(cfg.LogFile, cfg.Verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot open logfile:", err)
		return 3
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := server.New(addr, time.Duration(cfg.Timeout)*time.Second, log, int(cfg.Port))

	if err := snapshot.Load(cfg.DBFilename, srv.Executor.Keyspace); err != nil {
		log.WithError(err).Error("failed to load snapshot")
	}

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.WithField("event", "shutdown").Info("received shutdown signal")
		cancel()
	}()

	runErr := srv.Run(ctx)

	if saveErr := snapshot.Save(cfg.DBFilename, srv.Executor.Keyspace); saveErr != nil {
		log.WithError(saveErr).Error("failed to save snapshot")
	}

	if runErr != nil {
		log.WithError(runErr).Error("listener error")
		return 2
	}
	return 0
}

// loadConfig implements spec.md §6's positional-argument contract. A nil
// *config.Config return means the process should exit immediately with
// the accompanying code.
func loadConfig(args []string) (*config.Config, int) {
	switch len(args) {
	case 0:
		return config.Default(), 0
	case 1:
		cfg, err := config.LoadFile(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, "cannot read config file:", err)
			return nil, 3
		}
		return cfg, 0
	default:
		fmt.Fprintln(os.Stderr, "usage: kvserver [config-file]")
		return nil, 1
	}
}
