package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/xgxt/internal/samplegen"
	"github.com/okian/xgxt/pkg/logger"
)

// Default configuration constants.
const (
	defaultShots       = 40
	defaultPasses      = 200
	defaultSeed        = 42
	defaultMissingRate = 0.05
	defaultTimeout     = 10 * time.Second
	runTimeout         = time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service; empty skips the upload")
		name    = flag.String("name", "sample.csv", "File name recorded as the dataset source")
		shots   = flag.Int("shots", defaultShots, "Number of shot rows")
		passes  = flag.Int("passes", defaultPasses, "Number of pass rows")
		seed    = flag.Int64("seed", defaultSeed, "Random seed")
		missing = flag.Float64("missing", defaultMissingRate, "Share of rows without their metric")
		invalid = flag.Float64("invalid", 0, "Share of rows placed off the pitch")
		output  = flag.String("output", "", "Also write the CSV to this file")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		verbose = flag.Bool("verbose", false, "Log every row warning")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		samplegen.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := &samplegen.Config{
		BaseURL:     *baseURL,
		Name:        *name,
		Shots:       *shots,
		Passes:      *passes,
		Seed:        *seed,
		MissingRate: *missing,
		InvalidRate: *invalid,
		Output:      *output,
		Timeout:     *timeout,
		Verbose:     *verbose,
	}
	if _, err := samplegen.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("sample run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1)
	}
}
