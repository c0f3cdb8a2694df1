package geo

import (
	"fmt"
	"math"
	"time"
)

const earthRadiusKm = 6371.0

// Average speeds in km/h used for route estimates.
var modeSpeeds = map[string]float64{
	"walking": 5,
	"cycling": 15,
	"transit": 25,
	"driving": 40,
}

// DistanceKm returns the great-circle distance between two coordinates.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// RouteEstimate is a straight-line distance and travel-time estimate. It is
// not a routed path; the app only needs a rough "how far is this".
type RouteEstimate struct {
	DistanceKm float64       `json:"distance_km"`
	Mode       string        `json:"mode"`
	Duration   time.Duration `json:"-"`
	Minutes    int           `json:"minutes"`
}

// EstimateRoute estimates travel time between two points for a travel mode.
func EstimateRoute(lat1, lng1, lat2, lng2 float64, mode string) (*RouteEstimate, error) {
	speed, ok := modeSpeeds[mode]
	if !ok {
		return nil, fmt.Errorf("geo: unknown travel mode %q", mode)
	}

	distance := DistanceKm(lat1, lng1, lat2, lng2)
	duration := time.Duration(distance / speed * float64(time.Hour))

	return &RouteEstimate{
		DistanceKm: distance,
		Mode:       mode,
		Duration:   duration,
		Minutes:    int(math.Ceil(duration.Minutes())),
	}, nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
