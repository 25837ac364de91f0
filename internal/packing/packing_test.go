package packing

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var container20FT = Container{Length: 590, Width: 235, Height: 239, MaxWeightKg: 18000}

func TestSolve_StandardCartonIn20FT(t *testing.T) {
	res, err := Solve(Box{Length: 50, Width: 30, Height: 20, WeightKg: 5}, container20FT)
	require.NoError(t, err)

	// 11 x 7 x 11 along LWH; LHW ties at 847 but is enumerated later
	require.Equal(t, Orientation{Length: 50, Width: 30, Height: 20}, res.Orientation)
	require.Equal(t, 847, res.VolumeCapacity)
	require.Equal(t, 3600, res.WeightCapacity)
	require.Equal(t, 847, res.BoxesPerContainer)
	require.Equal(t, LimitedByVolume, res.LimitingFactor)
	require.Equal(t, 77, res.VolumeUtilizationPct)
	require.Equal(t, 24, res.WeightUtilizationPct)

	o := res.Orientation
	require.LessOrEqual(t, float64(int(container20FT.Length/o.Length))*o.Length, container20FT.Length)
	require.Greater(t, float64(int(container20FT.Length/o.Length)+1)*o.Length, container20FT.Length)
}

func TestSolve_WeightLimited(t *testing.T) {
	res, err := Solve(Box{Length: 50, Width: 30, Height: 20, WeightKg: 40}, container20FT)
	require.NoError(t, err)
	require.Equal(t, 450, res.WeightCapacity)
	require.Equal(t, 450, res.BoxesPerContainer)
	require.Equal(t, LimitedByWeight, res.LimitingFactor)
	require.Equal(t, 100, res.WeightUtilizationPct)
}

func TestSolve_TieResolvesToVolume(t *testing.T) {
	// 10 x 10 x 10 grid of 1 cm cubes against exactly 1000 kg of payload
	res, err := Solve(Box{Length: 1, Width: 1, Height: 1, WeightKg: 1}, Container{Length: 10, Width: 10, Height: 10, MaxWeightKg: 1000})
	require.NoError(t, err)
	require.Equal(t, 1000, res.BoxesPerContainer)
	require.Equal(t, LimitedByVolume, res.LimitingFactor)
}

func TestSolve_RotatesToFit(t *testing.T) {
	// too tall standing up, fits lying down
	res, err := Solve(Box{Length: 30, Width: 30, Height: 300}, container20FT)
	require.NoError(t, err)
	require.Equal(t, 300.0, res.Orientation.Length)
	require.Equal(t, LimitedByVolume, res.LimitingFactor)
}

func TestSolve_BoxTooLarge(t *testing.T) {
	_, err := Solve(Box{Length: 600, Width: 240, Height: 10, WeightKg: 1}, container20FT)
	require.ErrorIs(t, err, ErrBoxTooLarge)

	_, err = Solve(Box{Length: 50, Width: 30, Height: 20, WeightKg: 18001}, container20FT)
	require.ErrorIs(t, err, ErrBoxTooLarge)
}

func TestSolve_WeightlessBoxIsVolumeLimited(t *testing.T) {
	res, err := Solve(Box{Length: 50, Width: 30, Height: 20}, container20FT)
	require.NoError(t, err)
	require.Zero(t, res.WeightCapacity)
	require.Equal(t, 847, res.VolumeCapacity)
	require.Equal(t, res.VolumeCapacity, res.BoxesPerContainer)
	require.Equal(t, LimitedByVolume, res.LimitingFactor)
	require.Zero(t, res.WeightUtilizationPct)

	res, err = Solve(Box{Length: 50, Width: 30, Height: 20, WeightKg: 5}, Container{Length: 590, Width: 235, Height: 239})
	require.NoError(t, err)
	require.Zero(t, res.WeightCapacity)
	require.Equal(t, 847, res.BoxesPerContainer)
}

func TestSolve_InvalidDimensions(t *testing.T) {
	_, err := Solve(Box{Length: 0, Width: 10, Height: 10}, container20FT)
	require.ErrorIs(t, err, ErrInvalidBox)

	_, err = Solve(Box{Length: 10, Width: 10, Height: 10}, Container{})
	require.ErrorIs(t, err, ErrInvalidBox)
}

func TestSolve_IsDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		box := Box{
			Length:   float64(rng.Intn(120) + 1),
			Width:    float64(rng.Intn(120) + 1),
			Height:   float64(rng.Intn(120) + 1),
			WeightKg: float64(rng.Intn(50) + 1),
		}
		first, err1 := Solve(box, container20FT)
		second, err2 := Solve(box, container20FT)
		require.Equal(t, err1, err2)
		require.Equal(t, first, second)
		require.Equal(t, min(first.VolumeCapacity, first.WeightCapacity), first.BoxesPerContainer)
	}
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name     string
		total    float64
		perBox   float64
		perCont  int
		expected Shipment
	}{
		{name: "exact fill", total: 1694, perBox: 1, perCont: 847, expected: Shipment{TotalBoxes: 1694, ContainersNeeded: 2, LastContainerFillPct: 100}},
		{name: "partial last container", total: 50000, perBox: 50, perCont: 847, expected: Shipment{TotalBoxes: 1000, ContainersNeeded: 2, LastContainerFillPct: 18}},
		{name: "boxes round up", total: 101, perBox: 10, perCont: 5, expected: Shipment{TotalBoxes: 11, ContainersNeeded: 3, LastContainerFillPct: 20}},
		{name: "no container capacity", total: 10, perBox: 1, perCont: 0, expected: Shipment{TotalBoxes: 10}},
		{name: "empty order", total: 0, perBox: 1, perCont: 10, expected: Shipment{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.expected, Plan(tc.total, tc.perBox, tc.perCont))
		})
	}
}
