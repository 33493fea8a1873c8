package api

import (
	"net/http"
)

// CatalogHandler lists the choices offered by the prediction form.
type CatalogHandler struct {
	deps Dependencies
}

// NewCatalogHandler creates a catalog handler.
func NewCatalogHandler(deps Dependencies) *CatalogHandler {
	return &CatalogHandler{deps: deps}
}

type stadiumsResponse struct {
	Stadiums []string `json:"stadiums"`
}

type teamsResponse struct {
	Teams []string `json:"teams"`
}

// HandleStadiums handles GET /stadiums.
func (h *CatalogHandler) HandleStadiums(w http.ResponseWriter, r *http.Request) {
	names, err := h.deps.Stadiums(r.Context())
	if err != nil {
		writeFailure(r.Context(), w, nil, Wrap("api.stadiums", err))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, stadiumsResponse{Stadiums: names})
}

// HandleTeams handles GET /teams.
func (h *CatalogHandler) HandleTeams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, teamsResponse{Teams: h.deps.Teams()})
}
