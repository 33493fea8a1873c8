// Package site serves the browser form for requesting predictions.
package site

import (
	"context"
	"net/http"

	"github.com/a-h/templ"
	"github.com/gorilla/mux"
)

// Catalog supplies the form's choices.
type Catalog interface {
	Stadiums(ctx context.Context) ([]string, error)
	Teams() []string
}

// Register attaches the form page at / to r.
func Register(_ context.Context, r *mux.Router, cat Catalog) {
	if r == nil {
		panic("router is nil")
	}
	r.Handle("/", NewRootHandler(cat)).Methods(http.MethodGet)
}

// RootHandler renders the form page.
type RootHandler struct {
	cat Catalog
}

// NewRootHandler creates a new root handler.
func NewRootHandler(cat Catalog) *RootHandler {
	return &RootHandler{cat: cat}
}

// ServeHTTP handles GET / requests.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	data := FormData{Teams: h.cat.Teams()}
	stadiums, err := h.cat.Stadiums(r.Context())
	if err != nil {
		data.Notice = "The stadium catalog is unavailable."
	}
	data.Stadiums = stadiums
	if err == nil && len(stadiums) == 0 {
		data.Notice = "No stadiums have been imported yet."
	}
	templ.Handler(FormPage(data)).ServeHTTP(w, r)
}
