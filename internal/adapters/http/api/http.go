// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/internal/domain/view"
	"github.com/okian/xgxt/pkg/logger"
)

// Default server configuration constants.
const (
	defaultMaxUploadBytes = 5 << 20
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	// Upload parses a CSV and makes it the active dataset of the session.
	Upload(ctx context.Context, sid, name string, r io.Reader) (*ingest.Result, error)
	// Reset drops the uploaded dataset of the session.
	Reset(ctx context.Context, sid string) error

	Dataset(ctx context.Context, sid string) (*model.Dataset, error)
	Preview(ctx context.Context, sid string) ([]model.Event, error)
	DefaultWeight() float64

	RenderDataset(ctx context.Context, sid string, state view.State, w io.Writer) error
	RenderExample(ctx context.Context, name string, w io.Writer) error
}

// Server wires HTTP routes for the explorer.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	pageHandler    *PageHandler
	figureHandler  *FigureHandler
	datasetHandler *DatasetHandler

	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverConfig)

type serverConfig struct {
	maxUploadBytes int64
	secureCookie   bool
	logger         logger.Logger
}

// WithMaxUploadBytes caps the body size of uploads.
func WithMaxUploadBytes(n int64) Option {
	return func(c *serverConfig) {
		if n > 0 {
			c.maxUploadBytes = n
		}
	}
}

// WithSecureCookie marks the session cookie Secure, for HTTPS deployments.
func WithSecureCookie(secure bool) Option {
	return func(c *serverConfig) {
		c.secureCookie = secure
	}
}

// WithLogger sets the request logger.
func WithLogger(l logger.Logger) Option {
	return func(c *serverConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	cfg := serverConfig{maxUploadBytes: defaultMaxUploadBytes}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = logger.Nop()
	}
	sessions := sessionCookies{secure: cfg.secureCookie}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		pageHandler:    NewPageHandler(deps, sessions, cfg.maxUploadBytes, cfg.logger),
		figureHandler:  NewFigureHandler(deps, sessions, cfg.logger),
		datasetHandler: NewDatasetHandler(deps, sessions, cfg.maxUploadBytes, cfg.logger),
		logger:         cfg.logger,
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	r.Use(LoggingMiddleware(s.logger), RecoverMiddleware(s.logger))

	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/", MetricsMiddleware(s.pageHandler.HandlePage, "page")).Methods(http.MethodGet)
	r.HandleFunc("/upload", MetricsMiddleware(s.pageHandler.HandleUpload, "upload")).Methods(http.MethodPost)
	r.HandleFunc("/reset", MetricsMiddleware(s.pageHandler.HandleReset, "reset")).Methods(http.MethodPost)

	r.HandleFunc("/figure.svg", MetricsMiddleware(s.figureHandler.HandleDataset, "figure")).Methods(http.MethodGet)
	r.HandleFunc("/figures/{name}.svg", MetricsMiddleware(s.figureHandler.HandleExample, "figures")).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/dataset", MetricsMiddleware(s.datasetHandler.HandleGet, "dataset")).Methods(http.MethodGet)
	api.HandleFunc("/dataset", MetricsMiddleware(s.datasetHandler.HandlePost, "dataset")).Methods(http.MethodPost)
	api.HandleFunc("/dataset", MetricsMiddleware(s.datasetHandler.HandleDelete, "dataset")).Methods(http.MethodDelete)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
