// Command hullgen converts a polygon mesh into an engine-ready convex
// collision representation: extraction, optimization, partitioning,
// and export, driven either by flags or by a pipeline script.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chazu/hullgen/pkg/config"
	"github.com/chazu/hullgen/pkg/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Error("pipeline failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
