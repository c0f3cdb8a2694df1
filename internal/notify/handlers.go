package notify

import (
	"net/http"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// History handles GET /notifications, listing the caller's delivery history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	items, err := h.repo.ListByUser(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to list notifications")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
