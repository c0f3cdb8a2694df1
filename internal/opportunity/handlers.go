package opportunity

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/voluntapp/voluntapp/internal/auth"
	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := Actor{UserID: auth.UserIDFrom(r.Context()), Roles: auth.RolesFrom(r.Context())}
	o, err := h.service.Create(r.Context(), actor, req)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusForbidden, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusCreated, o)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := Actor{UserID: auth.UserIDFrom(r.Context()), Roles: auth.RolesFrom(r.Context())}
	o, err := h.service.Update(r.Context(), actor, mux.Vars(r)["id"], req)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status Status `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	actor := Actor{UserID: auth.UserIDFrom(r.Context()), Roles: auth.RolesFrom(r.Context())}
	o, err := h.service.SetStatus(r.Context(), actor, mux.Vars(r)["id"], req.Status)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to load opportunity")
		return
	}
	if o == nil {
		jsonutil.WriteErrorJSON(w, http.StatusNotFound, "Opportunity not found")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, o)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := Filters{
		Status:   Status(q.Get("status")),
		Category: q.Get("category"),
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil {
		f.Limit = limit
	}
	if offset, err := strconv.Atoi(q.Get("offset")); err == nil {
		f.Offset = offset
	}

	items, err := h.service.List(r.Context(), f)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusInternalServerError, "Failed to list opportunities")
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}
