package samplegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/xgxt/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0750
	filePermission      = 0600
)

// Run generates the sample file, saves it and uploads it as configured.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting sample generator",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("shots", cfg.Shots),
		logger.Int("passes", cfg.Passes),
		logger.String("output", cfg.Output),
	)

	data, err := generateFile(ctx, cfg, stats)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	if cfg.Output != "" {
		if err := saveFile(cfg.Output, data); err != nil {
			return nil, fmt.Errorf("save failed: %w", err)
		}
		log.Info(ctx, "sample saved", logger.String("file", cfg.Output), logger.Int("bytes", len(data)))
	}

	if cfg.BaseURL != "" {
		client := NewHTTPClient(cfg.BaseURL, cfg.Timeout)
		if err := client.Health(ctx); err != nil {
			return nil, fmt.Errorf("service health check failed: %w", err)
		}
		res, err := client.Upload(ctx, cfg.Name, data)
		if err != nil {
			return nil, err
		}
		stats.RowsAccepted = res.Events
		stats.Warnings = len(res.Warnings)
		for _, w := range res.Warnings {
			if w.Rejected {
				stats.RowsRejected++
			}
			if cfg.Verbose {
				log.Info(ctx, "row warning",
					logger.Int("row", w.Row),
					logger.String("column", w.Column),
					logger.String("reason", w.Reason),
					logger.Bool("rejected", w.Rejected),
				)
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

func saveFile(name string, data []byte) error {
	if dir := filepath.Dir(name); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(name, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// displayFinalStats logs the run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "final statistics",
		logger.Int("rowsGenerated", stats.RowsGenerated),
		logger.Int("rowsAccepted", stats.RowsAccepted),
		logger.Int("rowsRejected", stats.RowsRejected),
		logger.Int("warnings", stats.Warnings),
		logger.Duration("duration", stats.Duration),
	)
}
