package distance

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

const (
	earthRadiusKm = 6371.0
	// RoadFactor inflates straight-line distance to approximate road distance.
	RoadFactor = 1.3
)

var (
	// ErrLocationNotResolved is returned when the origin postal code is not in the lookup table.
	ErrLocationNotResolved = errors.New("distance: origin location not resolved")
	// ErrPortNotResolved is returned when neither the destination postal code nor the port code resolves.
	ErrPortNotResolved = errors.New("distance: destination port not resolved")
)

// Destination identifies the inland-haul destination. PostalCode is tried before PortCode.
type Destination struct {
	PostalCode string
	PortCode   string
}

// Estimate is an approximate road distance between two centroids.
type Estimate struct {
	DistanceKm  int    `json:"distance_km"`
	OriginLabel string `json:"origin_label"`
	DestLabel   string `json:"dest_label"`
}

// EstimateKm returns the road-adjusted great-circle distance between an origin PIN code and a port.
// It is a default for the user to override, never an authoritative figure.
func EstimateKm(originPostalCode string, dest Destination) (Estimate, error) {
	origin, ok := lookupPostal(originPostalCode)
	if !ok {
		return Estimate{}, fmt.Errorf("%w: %q", ErrLocationNotResolved, originPostalCode)
	}

	target, ok := lookupPostal(dest.PostalCode)
	if !ok {
		target, ok = portCoordinates[strings.ToUpper(strings.TrimSpace(dest.PortCode))]
	}
	if !ok {
		return Estimate{}, fmt.Errorf("%w: postal %q, port %q", ErrPortNotResolved, dest.PostalCode, dest.PortCode)
	}

	km := Haversine(origin.Lat, origin.Lon, target.Lat, target.Lon) * RoadFactor
	return Estimate{
		DistanceKm:  int(math.Round(km)),
		OriginLabel: origin.Label,
		DestLabel:   target.Label,
	}, nil
}

// Haversine returns the great-circle distance in kilometres.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// LocalFreight prices one inland haul: ratePerKm * km, floored at minimum.
// It returns false when there is no per-km rate or distance to work from.
func LocalFreight(ratePerKm decimal.Decimal, distanceKm int, minimum decimal.Decimal) (decimal.Decimal, bool) {
	if !ratePerKm.IsPositive() || distanceKm <= 0 {
		return decimal.Zero, false
	}
	charge := ratePerKm.Mul(decimal.NewFromInt(int64(distanceKm)))
	if charge.LessThan(minimum) {
		charge = minimum
	}
	return charge, true
}

func lookupPostal(code string) (Point, bool) {
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, code)
	if len(digits) < 2 {
		return Point{}, false
	}
	if len(digits) >= 3 {
		if p, ok := postalCentroids[digits[:3]]; ok {
			return p, true
		}
	}
	p, ok := postalCentroids[digits[:2]]
	return p, ok
}
