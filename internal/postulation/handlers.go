package postulation

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

// StatusNotifier fans a reviewed status change out to the remote notification
// pipeline. Satisfied by notify.Router; nil disables remote notifications.
type StatusNotifier interface {
	PostulationStatusChanged(ctx context.Context, p Postulation)
}

type Handler struct {
	service  *Service
	notifier StatusNotifier
}

func NewHandler(service *Service, notifier StatusNotifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	var req ApplyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.service.Apply(r.Context(), auth.UserIDFrom(r.Context()), req)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListByUser(r.Context(), auth.UserIDFrom(r.Context()))
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to list postulations")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Withdraw(r.Context(), auth.UserIDFrom(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, p)
}

// Review applies a reviewer decision and, on success, hands the change to the
// remote notification pipeline. Remote delivery is best-effort.
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p, err := h.service.Review(r.Context(), ReviewParams{
		PostulationID: mux.Vars(r)["id"],
		ActorID:       auth.UserIDFrom(r.Context()),
		ActorRoles:    auth.RolesFrom(r.Context()),
		RawStatus:     req.Status,
	})
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.notifier != nil {
		h.notifier.PostulationStatusChanged(r.Context(), *p)
	}
	jsonutil.WriteJSON(w, http.StatusOK, p)
}
