package packing

import "math"

// Shipment is the container plan for a whole order.
type Shipment struct {
	TotalBoxes           int `json:"total_boxes"`
	ContainersNeeded     int `json:"containers_needed"`
	LastContainerFillPct int `json:"last_container_fill_pct"`
}

// Plan derives box and container counts for totalQuantity, where each box holds perBoxQuantity
// (pass 1 when totalQuantity is already a box count). Counts round up, never down.
func Plan(totalQuantity, perBoxQuantity float64, boxesPerContainer int) Shipment {
	if totalQuantity <= 0 {
		return Shipment{}
	}
	if perBoxQuantity <= 0 {
		perBoxQuantity = 1
	}

	s := Shipment{TotalBoxes: int(math.Ceil(totalQuantity / perBoxQuantity))}
	if boxesPerContainer <= 0 {
		return s
	}

	s.ContainersNeeded = CeilDiv(s.TotalBoxes, boxesPerContainer)
	if remainder := s.TotalBoxes % boxesPerContainer; remainder == 0 {
		s.LastContainerFillPct = 100
	} else {
		s.LastContainerFillPct = percent(float64(remainder), float64(boxesPerContainer))
	}
	return s
}

// CeilDiv divides rounding up. It returns 0 for non-positive divisors.
func CeilDiv(n, d int) int {
	if d <= 0 || n <= 0 {
		return 0
	}
	return (n + d - 1) / d
}
