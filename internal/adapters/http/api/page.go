package api

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/a-h/templ"

	"github.com/okian/xgxt/internal/adapters/http/site"
	"github.com/okian/xgxt/internal/domain/ingest"
	"github.com/okian/xgxt/internal/domain/view"
	"github.com/okian/xgxt/pkg/logger"
)

// Form field carrying the uploaded file.
const uploadField = "file"

// PageHandler serves the explorer page and its form posts.
type PageHandler struct {
	deps     Dependencies
	sessions sessionCookies
	maxBytes int64
	logger   logger.Logger
}

// NewPageHandler creates a new page handler.
func NewPageHandler(deps Dependencies, sessions sessionCookies, maxBytes int64, l logger.Logger) *PageHandler {
	return &PageHandler{deps: deps, sessions: sessions, maxBytes: maxBytes, logger: l}
}

// HandlePage handles GET / requests.
func (h *PageHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	state := view.FromQuery(r.URL.Query())
	h.render(w, r, http.StatusOK, h.sessions.id(r), state, nil)
}

// HandleUpload handles POST /upload requests. The page is rendered again in
// the same mode with either the new dataset or the reason it was refused.
func (h *PageHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "api.upload"
	ctx := r.Context()
	state := view.FromQuery(r.URL.Query())
	sid := h.sessions.ensure(w, r)

	if r.ContentLength > h.maxBytes {
		h.render(w, r, http.StatusRequestEntityTooLarge, sid, state, &pageNotice{Error: tooLargeMessage(h.maxBytes)})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	file, hdr, err := r.FormFile(uploadField)
	if err != nil {
		status, msg := formError(err, h.maxBytes)
		h.render(w, r, status, sid, state, &pageNotice{Error: msg})
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.deps.Upload(ctx, sid, hdr.Filename, file)
	if err != nil {
		status, notice := uploadFailure(err, h.maxBytes)
		if status >= statusInternalError {
			h.logger.Error(ctx, "upload failed", logger.String("op", op), logger.Error(err))
		}
		h.render(w, r, status, sid, state, notice)
		return
	}
	h.render(w, r, http.StatusOK, sid, state, &pageNotice{Warnings: res.Warnings})
}

// HandleReset handles POST /reset requests.
func (h *PageHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	state := view.FromQuery(r.URL.Query())
	if sid := h.sessions.id(r); sid != "" {
		if err := h.deps.Reset(r.Context(), sid); err != nil {
			writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
			return
		}
	}
	http.Redirect(w, r, site.PageURL(state), http.StatusSeeOther)
}

type pageNotice struct {
	Error    string
	Warnings []ingest.RowIssue
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, sid string, state view.State, n *pageNotice) {
	data, err := h.pageData(r.Context(), sid, state)
	if err != nil {
		h.logger.Error(r.Context(), "page data", logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", ErrInternal)
		return
	}
	if n != nil {
		data.Error = n.Error
		data.Warnings = n.Warnings
	}
	w.Header().Set("Cache-Control", "no-store")
	templ.Handler(site.Page(data), templ.WithStatus(status)).ServeHTTP(w, r)
}

func (h *PageHandler) pageData(ctx context.Context, sid string, state view.State) (site.PageData, error) {
	const op = "api.page_data"
	ds, err := h.deps.Dataset(ctx, sid)
	if err != nil {
		return site.PageData{}, Wrap(op, err)
	}
	preview, err := h.deps.Preview(ctx, sid)
	if err != nil {
		return site.PageData{}, Wrap(op, err)
	}
	return site.PageData{
		State:         state,
		Source:        ds.Source,
		Uploaded:      ds.Uploaded,
		Total:         ds.Len(),
		Counts:        ds.CountByType(),
		Preview:       preview,
		DefaultWeight: h.deps.DefaultWeight(),
		Explainers:    site.DefaultExplainers(),
	}, nil
}

func tooLargeMessage(limit int64) string {
	return fmt.Sprintf("The file is larger than the %d KiB limit.", limit>>10)
}

// formError maps a multipart read failure to a status and message.
func formError(err error, limit int64) (int, string) {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe), errors.Is(err, multipart.ErrMessageTooLarge):
		return http.StatusRequestEntityTooLarge, tooLargeMessage(limit)
	case errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest, "Choose a CSV file to upload."
	default:
		return http.StatusBadRequest, "The upload could not be read."
	}
}

// uploadFailure maps an Upload error to a status and page notice.
func uploadFailure(err error, limit int64) (int, *pageNotice) {
	var (
		verr *ingest.ValidationError
		mbe  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge, &pageNotice{Error: tooLargeMessage(limit)}
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity, &pageNotice{
			Error:    "The file was not loaded: " + verr.Error() + ". The previous data is still shown.",
			Warnings: verr.Issues,
		}
	default:
		return http.StatusInternalServerError, &pageNotice{Error: "The upload failed. Please try again."}
	}
}
