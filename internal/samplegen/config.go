// Package samplegen writes seeded synthetic event files and uploads them to
// a running explorer.
package samplegen

import "time"

// Config holds configuration for a generator run.
type Config struct {
	BaseURL     string        // server to upload to; empty skips the upload
	Name        string        // file name recorded as the dataset source
	Shots       int           // number of shot rows
	Passes      int           // number of pass rows
	Seed        int64         // same seed, same file
	MissingRate float64       // share of rows written without their metric
	InvalidRate float64       // share of rows placed off the pitch
	Output      string        // CSV path; empty skips writing a file
	Timeout     time.Duration // HTTP request timeout
	Verbose     bool          // log every row warning returned by the server
}

// UploadResult is the server's answer to an accepted upload.
type UploadResult struct {
	Source   string     `json:"source"`
	Rows     int        `json:"rows"`
	Events   int        `json:"events"`
	Warnings []RowIssue `json:"warnings"`
}

// RowIssue is one row warning reported by the server.
type RowIssue struct {
	Row      int    `json:"row"`
	Column   string `json:"column"`
	Reason   string `json:"reason"`
	Rejected bool   `json:"rejected"`
}

// Stats holds run statistics.
type Stats struct {
	RowsGenerated int
	RowsAccepted  int
	RowsRejected  int
	Warnings      int
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration
}
