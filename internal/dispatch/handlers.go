package dispatch

import (
	"net/http"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

// Handler exposes the badge counter to the app. The client reads the count
// on launch and resets it when the user opens the notification list.
type Handler struct {
	badges *BadgeCounter
}

func NewHandler(badges *BadgeCounter) *Handler {
	return &Handler{badges: badges}
}

func (h *Handler) GetBadge(w http.ResponseWriter, r *http.Request) {
	count, err := h.badges.Get(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to load badge count")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]int64{"count": count})
}

func (h *Handler) ResetBadge(w http.ResponseWriter, r *http.Request) {
	if err := h.badges.Reset(r.Context(), auth.UserIDFrom(r.Context())); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to reset badge count")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]int64{"count": 0})
}
