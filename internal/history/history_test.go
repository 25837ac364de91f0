package history

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/exportquote/internal/db"
	"github.com/Simplici0/exportquote/internal/migrations"
	"github.com/Simplici0/exportquote/internal/pricing"
)

func newTestStore(t *testing.T, limit int) *Store {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	store := NewStore(database, limit)
	clock := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return store
}

func resultWithTotal(total int64) pricing.Result {
	inr := decimal.NewFromInt(total)
	return pricing.Result{
		Tier:       pricing.TierEXW,
		ExFactory:  pricing.TierPrice{Computed: true, INR: inr, USD: inr.Div(decimal.NewFromInt(83)).Round(2)},
		Breakdown:  []pricing.Line{{Key: pricing.LineProductSubtotal, Stage: pricing.TierEXW, Amount: inr}},
		Quantities: pricing.Quantities{TotalUnits: 10},
	}
}

func appendQuote(t *testing.T, s *Store, title, notes string, total int64) Snapshot {
	t.Helper()
	snap, err := s.Append(context.Background(), Snapshot{Title: title, Notes: notes, Result: resultWithTotal(total)})
	require.NoError(t, err)
	return snap
}

func TestListOrdersNewestFirstAndReadsTotal(t *testing.T) {
	s := newTestStore(t, 0)

	appendQuote(t, s, "First", "note one", 100)
	appendQuote(t, s, "Second", "note two", 200)
	appendQuote(t, s, "Third", "note three", 300)

	items, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.Equal(t, []string{"Third", "Second", "First"}, []string{items[0].Title, items[1].Title, items[2].Title})
	require.True(t, items[0].Totals.Total.Equal(decimal.NewFromInt(300)))
	require.Equal(t, pricing.TierEXW, items[0].Totals.Tier)
	require.True(t, items[0].CreatedAt.After(items[1].CreatedAt))
}

func TestListFiltersByTitleAndNotes(t *testing.T) {
	s := newTestStore(t, 0)

	appendQuote(t, s, "Towels", "red dye", 80)
	appendQuote(t, s, "Rugs", "vip buyer", 120)
	appendQuote(t, s, "Prototype", "towels sample run", 160)

	byTitle, err := s.List(context.Background(), "Rug")
	require.NoError(t, err)
	require.Len(t, byTitle, 1)
	require.Equal(t, "Rugs", byTitle[0].Title)

	byNotes, err := s.List(context.Background(), "towels")
	require.NoError(t, err)
	require.Len(t, byNotes, 2)
}

func TestAppendEvictsOldestBeyondLimit(t *testing.T) {
	s := newTestStore(t, 3)

	first := appendQuote(t, s, "q1", "", 1)
	for i := 2; i <= 5; i++ {
		appendQuote(t, s, "q"+string(rune('0'+i)), "", int64(i))
	}

	items, err := s.List(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "q5", items[0].Title)
	require.Equal(t, "q3", items[2].Title)

	_, err = s.Get(context.Background(), first.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestGetRoundTripsSnapshot(t *testing.T) {
	s := newTestStore(t, 0)

	saved, err := s.Append(context.Background(), Snapshot{
		Title:   "Towels",
		Request: json.RawMessage(`{"product_id":1}`),
		Result:  resultWithTotal(8300),
	})
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := s.Get(context.Background(), saved.ID)
	require.NoError(t, err)
	require.Equal(t, saved.ID, got.ID)
	require.True(t, saved.CreatedAt.Equal(got.CreatedAt))
	require.JSONEq(t, `{"product_id":1}`, string(got.Request))
	require.True(t, got.Result.ExFactory.INR.Equal(decimal.NewFromInt(8300)))
	require.Nil(t, got.Adjusted)
}

func TestSaveAdjustmentKeepsOriginal(t *testing.T) {
	s := newTestStore(t, 0)
	ctx := context.Background()

	saved := appendQuote(t, s, "Towels", "", 8300)
	adjusted, err := pricing.Recompute(saved.Result, pricing.Overrides{pricing.LineProductSubtotal: decimal.NewFromInt(9000)})
	require.NoError(t, err)

	got, err := s.SaveAdjustment(ctx, saved.ID, pricing.Overrides{pricing.LineProductSubtotal: decimal.NewFromInt(9000)}, adjusted)
	require.NoError(t, err)

	require.True(t, got.Result.ExFactory.INR.Equal(decimal.NewFromInt(8300)))
	require.NotNil(t, got.Adjusted)
	require.True(t, got.Current().ExFactory.INR.Equal(decimal.NewFromInt(9000)))
	require.NotNil(t, got.AdjustedAt)
	require.Contains(t, got.Overrides, pricing.LineProductSubtotal)

	items, err := s.List(ctx, "")
	require.NoError(t, err)
	require.True(t, items[0].Adjusted)
	require.True(t, items[0].Totals.Total.Equal(decimal.NewFromInt(9000)))

	_, err = s.SaveAdjustment(ctx, "missing", nil, adjusted)
	require.ErrorIs(t, err, ErrNotFound)
}
