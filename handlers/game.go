package handlers

import (
	"net/http"

	"github.com/akinalp/rollcall/pkg"
	"github.com/akinalp/rollcall/services"
)

type GameHandler struct {
	queries services.QueryService
}

func NewGameHandler(queries services.QueryService) *GameHandler {
	return &GameHandler{queries: queries}
}

// List godoc
// GET /api/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.queries.ListGames(r.Context())
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, games)
}

// Get godoc
// GET /api/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.queries.GetGame(r.Context(), r.PathValue("id"))
	if err != nil {
		pkg.Error(w, err)
		return
	}
	pkg.JSON(w, http.StatusOK, detail)
}
