package goal

import (
	"encoding/json"
	"net/http"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	g, err := h.service.Get(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to load goal")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) SetTarget(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TargetHours int `json:"target_hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.service.SetTarget(r.Context(), auth.UserIDFrom(r.Context()), req.TargetHours)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, g)
}

func (h *Handler) AddProgress(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Hours int `json:"hours"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	g, err := h.service.AddProgress(r.Context(), auth.UserIDFrom(r.Context()), req.Hours)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, g)
}
