package packing

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrBoxTooLarge is returned when a box cannot fit the container in any orientation.
	ErrBoxTooLarge = errors.New("packing: box does not fit in container")
	// ErrInvalidBox is returned for non-positive box or container dimensions.
	ErrInvalidBox = errors.New("packing: invalid dimensions")
)

// LimitingFactor names the constraint that capped the boxes per container.
type LimitingFactor string

const (
	LimitedByVolume LimitingFactor = "volume"
	LimitedByWeight LimitingFactor = "weight"
)

// Box is a carton to be stowed. Dimensions in cm, weight in kg.
type Box struct {
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	WeightKg float64 `json:"weight_kg"`
}

// Volume returns the box volume in cubic centimetres.
func (b Box) Volume() float64 {
	return b.Length * b.Width * b.Height
}

// Container describes the usable interior of a shipping container.
type Container struct {
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// Volume returns the container volume in cubic centimetres.
func (c Container) Volume() float64 {
	return c.Length * c.Width * c.Height
}

// Orientation is the box as placed along the container's length, width and height.
type Orientation struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Result is the best-fit packing of a single box type into a single container.
type Result struct {
	BoxesPerContainer    int            `json:"boxes_per_container"`
	VolumeCapacity       int            `json:"volume_capacity"`
	// WeightCapacity is 0 when the box or the container has no weight, meaning unbounded.
	WeightCapacity       int            `json:"weight_capacity"`
	LimitingFactor       LimitingFactor `json:"limiting_factor"`
	Orientation          Orientation    `json:"orientation"`
	VolumeUtilizationPct int            `json:"volume_utilization_pct"`
	WeightUtilizationPct int            `json:"weight_utilization_pct"`
}

// Orientations enumerates the six axis permutations of a box in a fixed order:
// LWH, LHW, WLH, WHL, HLW, HWL. The first maximum wins during Solve.
func Orientations(b Box) []Orientation {
	l, w, h := b.Length, b.Width, b.Height
	return []Orientation{
		{l, w, h},
		{l, h, w},
		{w, l, h},
		{w, h, l},
		{h, l, w},
		{h, w, l},
	}
}

// Solve finds the orientation that grid-packs the most boxes into the container and caps the
// result by the container payload.
func Solve(box Box, container Container) (Result, error) {
	if box.Length <= 0 || box.Width <= 0 || box.Height <= 0 {
		return Result{}, fmt.Errorf("%w: box %vx%vx%v", ErrInvalidBox, box.Length, box.Width, box.Height)
	}
	if container.Length <= 0 || container.Width <= 0 || container.Height <= 0 {
		return Result{}, fmt.Errorf("%w: container %vx%vx%v", ErrInvalidBox, container.Length, container.Width, container.Height)
	}

	boxDims := sortedDesc(box.Length, box.Width, box.Height)
	containerDims := sortedDesc(container.Length, container.Width, container.Height)
	for i := range boxDims {
		if boxDims[i] > containerDims[i] {
			return Result{}, ErrBoxTooLarge
		}
	}

	best := -1
	var bestOrientation Orientation
	for _, o := range Orientations(box) {
		if o.Length > container.Length || o.Width > container.Width || o.Height > container.Height {
			continue
		}
		count := gridCount(o, container)
		if count > best {
			best = count
			bestOrientation = o
		}
	}
	if best < 0 {
		// sorted dims fit but no axis-aligned permutation does; cannot happen for boxes
		return Result{}, ErrBoxTooLarge
	}

	weightCapacity := 0
	if box.WeightKg > 0 && container.MaxWeightKg > 0 {
		weightCapacity = int(math.Floor(container.MaxWeightKg / box.WeightKg))
		if weightCapacity == 0 {
			return Result{}, fmt.Errorf("%w: box of %v kg exceeds %v kg payload", ErrBoxTooLarge, box.WeightKg, container.MaxWeightKg)
		}
	}

	res := Result{
		VolumeCapacity: best,
		WeightCapacity: weightCapacity,
		Orientation:    bestOrientation,
	}
	if weightCapacity == 0 || best <= weightCapacity {
		res.BoxesPerContainer = best
		res.LimitingFactor = LimitedByVolume
	} else {
		res.BoxesPerContainer = weightCapacity
		res.LimitingFactor = LimitedByWeight
	}

	res.VolumeUtilizationPct = percent(float64(res.BoxesPerContainer)*box.Volume(), container.Volume())
	if container.MaxWeightKg > 0 {
		res.WeightUtilizationPct = percent(float64(res.BoxesPerContainer)*box.WeightKg, container.MaxWeightKg)
	}
	return res, nil
}

func gridCount(o Orientation, c Container) int {
	return int(math.Floor(c.Length/o.Length)) *
		int(math.Floor(c.Width/o.Width)) *
		int(math.Floor(c.Height/o.Height))
}

func sortedDesc(a, b, c float64) []float64 {
	dims := []float64{a, b, c}
	sort.Sort(sort.Reverse(sort.Float64Slice(dims)))
	return dims
}

func percent(part, whole float64) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(part / whole * 100))
}
