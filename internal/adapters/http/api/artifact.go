package api

import (
	"io"
	"net/http"

	"github.com/gorilla/mux"
)

// ArtifactHandler serves stored diagrams.
type ArtifactHandler struct {
	deps Dependencies
}

// NewArtifactHandler creates an artifact handler.
func NewArtifactHandler(deps Dependencies) *ArtifactHandler {
	return &ArtifactHandler{deps: deps}
}

// HandleGetArtifact handles GET /images/{name}.
func (h *ArtifactHandler) HandleGetArtifact(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_artifact"
	name := mux.Vars(r)["name"]

	rc, err := h.deps.Artifact(r.Context(), name)
	if err != nil {
		writeFailure(r.Context(), w, nil, Wrap(op, err))
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400, immutable")
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
