package favorite

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	favorited, err := h.repo.Toggle(r.Context(), auth.UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to toggle favorite")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]bool{"favorited": favorited})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.repo.ListByUser(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to list favorites")
		return
	}
	if ids == nil {
		ids = []string{}
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"items": ids, "count": len(ids)})
}
