package samplegen

import "os"

// ShowHelp prints usage information for the sample generator.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`xgxt sample generator
=====================

Writes a seeded synthetic CSV of shots and passes and can upload it to a
running explorer.

Usage:
  go run ./cmd/sample-events [options]

Options:
  -url string
        Base URL of the service; empty skips the upload (default "http://localhost:9080")
  -name string
        File name recorded as the dataset source (default "sample.csv")
  -shots int
        Number of shot rows (default 40)
  -passes int
        Number of pass rows (default 200)
  -seed int
        Random seed (default 42)
  -missing float
        Share of rows without their metric (default 0.05)
  -invalid float
        Share of rows placed off the pitch (default 0)
  -output string
        Also write the CSV to this file
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every row warning
  -help
        Show this help message

Examples:
  # Upload a default sample
  go run ./cmd/sample-events

  # Write a file only
  go run ./cmd/sample-events -url "" -output sample.csv -passes 1000
`)
}
