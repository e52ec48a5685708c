// Package site renders the HTML page and serves its static assets.
package site

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
)

// StaticPrefix is where the embedded assets are served.
const StaticPrefix = "/static/"

// Register attaches the static asset routes to r.
func Register(_ context.Context, r *mux.Router) {
	if r == nil {
		panic("router is nil")
	}
	files := http.StripPrefix(StaticPrefix, http.FileServer(FS()))
	r.PathPrefix(StaticPrefix).Handler(files).Methods(http.MethodGet, http.MethodHead)
}
