package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/model"
	"github.com/okian/xgxt/pkg/logger"
)

// Query parameter naming an uploaded body.
const paramName = "name"

// defaultUploadName is the source recorded when a body arrives without a name.
const defaultUploadName = "upload.csv"

// DatasetHandler serves the JSON view of the session dataset.
type DatasetHandler struct {
	deps     Dependencies
	sessions sessionCookies
	maxBytes int64
	logger   logger.Logger
}

// NewDatasetHandler creates a new dataset handler.
func NewDatasetHandler(deps Dependencies, sessions sessionCookies, maxBytes int64, l logger.Logger) *DatasetHandler {
	return &DatasetHandler{deps: deps, sessions: sessions, maxBytes: maxBytes, logger: l}
}

type eventResponse struct {
	Row       int      `json:"row"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	EventType string   `json:"event_type"`
	XG        *float64 `json:"xg"`
	XT        *float64 `json:"xt"`
}

type datasetResponse struct {
	Source   string          `json:"source"`
	Uploaded bool            `json:"uploaded"`
	LoadedAt time.Time       `json:"loaded_at"`
	Events   []eventResponse `json:"events"`
}

type uploadResponse struct {
	Source   string            `json:"source"`
	Rows     int               `json:"rows"`
	Events   int               `json:"events"`
	Warnings []ingest.RowIssue `json:"warnings"`
}

type validationResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Missing []string          `json:"missing,omitempty"`
	Issues  []ingest.RowIssue `json:"issues,omitempty"`
}

// HandleGet handles GET /api/dataset requests.
func (h *DatasetHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ds, err := h.deps.Dataset(r.Context(), h.sessions.id(r))
	if err != nil {
		h.logger.Error(r.Context(), "dataset", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
		return
	}
	writeJSON(w, http.StatusOK, toDatasetResponse(ds))
}

// HandlePost handles POST /api/dataset requests carrying a raw CSV body.
func (h *DatasetHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	const op = "api.dataset_post"
	if r.ContentLength > h.maxBytes {
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", NewKind(op, ErrTooLarge))
		return
	}
	name := r.URL.Query().Get(paramName)
	if name == "" {
		name = defaultUploadName
	}
	sid := h.sessions.ensure(w, r)
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)

	res, err := h.deps.Upload(r.Context(), sid, name, body)
	if err != nil {
		var (
			verr *ingest.ValidationError
			mbe  *http.MaxBytesError
		)
		switch {
		case errors.As(err, &mbe):
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", NewKind(op, ErrTooLarge))
		case errors.As(err, &verr):
			writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
				Code:    "invalid_file",
				Message: verr.Error(),
				Missing: verr.Missing,
				Issues:  verr.Issues,
			})
		default:
			h.logger.Error(r.Context(), "upload failed", logger.String("op", op), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
		}
		return
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []ingest.RowIssue{}
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		Source:   res.Dataset.Source,
		Rows:     res.Rows,
		Events:   res.Dataset.Len(),
		Warnings: warnings,
	})
}

// HandleDelete handles DELETE /api/dataset requests.
func (h *DatasetHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if sid := h.sessions.id(r); sid != "" {
		if err := h.deps.Reset(r.Context(), sid); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func toDatasetResponse(ds *model.Dataset) datasetResponse {
	out := datasetResponse{
		Source:   ds.Source,
		Uploaded: ds.Uploaded,
		LoadedAt: ds.LoadedAt,
		Events:   make([]eventResponse, 0, ds.Len()),
	}
	for _, e := range ds.Events {
		out.Events = append(out.Events, eventResponse{
			Row:       e.Row,
			X:         e.X,
			Y:         e.Y,
			EventType: string(e.Type),
			XG:        e.XG,
			XT:        e.XT,
		})
	}
	return out
}
