package geo

import (
	"net/http"
	"strconv"

	"github.com/voluntapp/voluntapp/pkg/jsonutil"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func parseCoord(q map[string][]string, key string) (float64, bool) {
	vals, ok := q[key]
	if !ok || len(vals) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Estimate handles GET /geo/estimate?fromLat=..&fromLng=..&toLat=..&toLng=..&mode=walking
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	fromLat, ok1 := parseCoord(q, "fromLat")
	fromLng, ok2 := parseCoord(q, "fromLng")
	toLat, ok3 := parseCoord(q, "toLat")
	toLng, ok4 := parseCoord(q, "toLng")
	if !ok1 || !ok2 || !ok3 || !ok4 {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, "Missing or invalid coordinates")
		return
	}

	mode := q.Get("mode")
	if mode == "" {
		mode = "walking"
	}

	estimate, err := EstimateRoute(fromLat, fromLng, toLat, toLng, mode)
	if err != nil {
		jsonutil.WriteErrorJSON(w, http.StatusBadRequest, err.Error())
		return
	}
	jsonutil.WriteJSON(w, http.StatusOK, estimate)
}
