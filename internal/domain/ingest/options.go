package ingest

import (
	"time"

	"github.com/okian/xgxt/internal/domain/model"
)

// Option applies a configuration option to a load.
type Option func(*loader)

// WithPitch sets the geometry used for coordinate range checks.
func WithPitch(p model.Pitch) Option {
	return func(l *loader) {
		if p.Length > 0 && p.Width > 0 {
			l.pitch = p
		}
	}
}

// WithMaxRows caps the number of data rows accepted.
// Zero or negative means unlimited.
func WithMaxRows(n int) Option {
	return func(l *loader) {
		l.maxRows = n
	}
}

// WithSource names the resulting dataset.
func WithSource(name string) Option {
	return func(l *loader) {
		l.source = name
	}
}

// WithUploaded marks the dataset as user supplied.
func WithUploaded(uploaded bool) Option {
	return func(l *loader) {
		l.uploaded = uploaded
	}
}

// WithClock overrides the load timestamp source.
func WithClock(now func() time.Time) Option {
	return func(l *loader) {
		if now != nil {
			l.now = now
		}
	}
}
