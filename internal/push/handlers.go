package push

import (
	"encoding/json"
	"net/http"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct {
	tokens *TokenRepository
}

func NewHandler(tokens *TokenRepository) *Handler {
	return &Handler{tokens: tokens}
}

// Register handles POST /devices, storing the caller's push token.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Platform string `json:"platform"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tokens.RegisterToken(r.Context(), auth.UserIDFrom(r.Context()), req.Token, req.Platform); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to register device")
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Deregister handles DELETE /devices, deactivating a push token.
func (h *Handler) Deregister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Token == "" {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.tokens.Deactivate(r.Context(), req.Token); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to deregister device")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]string{"status": "deregistered"})
}
