package service

import (
	"github.com/okian/xgxt/internal/adapters/render"
	"github.com/okian/xgxt/internal/adapters/session"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/overlay"
	"github.com/okian/xgxt/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPitch sets the pitch geometry used for loading and drawing.
func WithPitch(p model.Pitch) Option {
	return func(s *Service) {
		s.pitch = p
	}
}

// WithMaxRows caps the number of data rows in an uploaded file.
func WithMaxRows(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRows = n
		}
	}
}

// WithPreviewRows sets how many rows Preview returns.
func WithPreviewRows(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.previewRows = n
		}
	}
}

// WithSessionStore replaces the in-memory session store.
func WithSessionStore(store session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithSessionOptions configures the default in-memory session store.
func WithSessionOptions(opts ...session.Option) Option {
	return func(s *Service) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithMapperOptions configures the event mapper.
func WithMapperOptions(opts ...overlay.Option) Option {
	return func(s *Service) {
		s.mapperOpts = append(s.mapperOpts, opts...)
	}
}

// WithRendererOptions configures the pitch renderer. The pitch is always the
// service pitch.
func WithRendererOptions(opts ...render.Option) Option {
	return func(s *Service) {
		s.rendererOpts = append(s.rendererOpts, opts...)
	}
}
