// Package main runs the employee cleaning pipeline once. Configuration comes
// from the environment and an optional .env file.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/David-Botos/employee-cleanse/pkg/config"
	"github.com/David-Botos/employee-cleanse/pkg/logging"
	"github.com/David-Botos/employee-cleanse/pkg/mapping"
	"github.com/David-Botos/employee-cleanse/pkg/pipeline"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return 1
	}

	logger, restore, err := logging.Install(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		return 1
	}
	defer restore()

	departments, err := mapping.LoadDepartments(cfg.DepartmentMapFile)
	if err != nil {
		logger.Error("Failed to load department mapping",
			zap.String("path", cfg.DepartmentMapFile),
			zap.Error(err))
		return 1
	}

	p, err := pipeline.New(cfg, departments, logger)
	if err != nil {
		logger.Error("Failed to create pipeline", zap.Error(err))
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx)
	if report != nil {
		for _, d := range report.Diagnostics {
			logger.Warn("Diagnostic", zap.Stringer("diagnostic", d))
		}
		fmt.Print(report.Metrics.Summary())
	}
	if err != nil {
		logger.Error("Pipeline run failed",
			zap.Bool("fatal", pipeline.IsFatal(err)),
			zap.Error(err))
		return 1
	}
	return 0
}
