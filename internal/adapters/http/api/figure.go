package api

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/okian/xgxt/internal/domain/examples"
	"github.com/okian/xgxt/internal/domain/view"
	"github.com/okian/xgxt/pkg/logger"
)

const svgContentType = "image/svg+xml"

// FigureHandler serves rendered SVG figures.
type FigureHandler struct {
	deps     Dependencies
	sessions sessionCookies
	logger   logger.Logger
}

// NewFigureHandler creates a new figure handler.
func NewFigureHandler(deps Dependencies, sessions sessionCookies, l logger.Logger) *FigureHandler {
	return &FigureHandler{deps: deps, sessions: sessions, logger: l}
}

// HandleDataset handles GET /figure.svg requests: the active dataset of the
// session drawn under the view state in the query.
func (h *FigureHandler) HandleDataset(w http.ResponseWriter, r *http.Request) {
	state := view.FromQuery(r.URL.Query())
	var buf bytes.Buffer
	if err := h.deps.RenderDataset(r.Context(), h.sessions.id(r), state, &buf); err != nil {
		h.logger.Error(r.Context(), "render dataset figure", logger.Error(WrapKind("api.figure", ErrRenderFailure, err)))
		writeError(w, http.StatusInternalServerError, "render", ErrRenderFailure)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeSVG(w, buf.Bytes())
}

// HandleExample handles GET /figures/{name}.svg requests.
func (h *FigureHandler) HandleExample(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !isExampleFigure(name) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.figure", ErrNotFound))
		return
	}
	var buf bytes.Buffer
	if err := h.deps.RenderExample(r.Context(), name, &buf); err != nil {
		h.logger.Error(r.Context(), "render example figure", logger.String("figure", name), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "render", ErrRenderFailure)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	writeSVG(w, buf.Bytes())
}

func isExampleFigure(name string) bool {
	switch name {
	case examples.NameShots, examples.NameZones, examples.NameBinned:
		return true
	}
	return false
}

func writeSVG(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", svgContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}
