package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/exportquote/internal/observability"
	"github.com/Simplici0/exportquote/internal/pricing"
)

// ErrNotFound is returned when no snapshot has the requested id.
var ErrNotFound = errors.New("quote not found")

// timeLayout sorts lexicographically in creation order.
const timeLayout = "2006-01-02 15:04:05.000000"

// Snapshot is one stored calculation: what was asked, what was computed and any manual
// adjustment layered on top.
type Snapshot struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	Title     string          `json:"title"`
	Notes     string          `json:"notes"`
	Request   json.RawMessage `json:"request"`
	Result    pricing.Result  `json:"result"`

	Overrides  pricing.Overrides `json:"overrides,omitempty"`
	Adjusted   *pricing.Result   `json:"adjusted,omitempty"`
	AdjustedAt *time.Time        `json:"adjusted_at,omitempty"`
}

// Current returns the adjusted result when there is one, else the computed result.
func (s Snapshot) Current() pricing.Result {
	if s.Adjusted != nil {
		return *s.Adjusted
	}
	return s.Result
}

// Totals are the headline figures kept alongside each snapshot.
type Totals struct {
	Tier     pricing.Tier    `json:"tier"`
	ExWorks  decimal.Decimal `json:"exw_inr"`
	FOB      decimal.Decimal `json:"fob_inr"`
	CIF      decimal.Decimal `json:"cif_inr"`
	Total    decimal.Decimal `json:"total"`
	TotalUSD decimal.Decimal `json:"total_usd"`
}

// TotalsOf extracts the headline figures of a result.
func TotalsOf(r pricing.Result) Totals {
	price := r.Price(r.Tier)
	return Totals{
		Tier:     r.Tier,
		ExWorks:  r.ExFactory.INR,
		FOB:      r.FOB.INR,
		CIF:      r.CIF.INR,
		Total:    price.INR,
		TotalUSD: price.USD,
	}
}

// Item is a history list row.
type Item struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Title     string    `json:"title"`
	Totals    Totals    `json:"totals"`
	Adjusted  bool      `json:"adjusted"`
}

// Store is an append-only quote log capped at a fixed number of entries.
type Store struct {
	db    *sql.DB
	limit int
	now   func() time.Time
}

// NewStore returns a Store keeping at most limit snapshots. A non-positive limit keeps all.
func NewStore(db *sql.DB, limit int) *Store {
	return &Store{db: db, limit: limit, now: time.Now}
}

// Append stores a new snapshot, assigning its id and timestamp, then evicts the oldest
// snapshots beyond the limit.
func (s *Store) Append(ctx context.Context, snap Snapshot) (Snapshot, error) {
	snap.ID = uuid.NewString()
	snap.CreatedAt = s.now().UTC()
	if len(snap.Request) == 0 {
		snap.Request = json.RawMessage("{}")
	}

	result, err := json.Marshal(snap.Result)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode result: %w", err)
	}
	totals, err := json.Marshal(TotalsOf(snap.Result))
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode totals: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin history transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO quotes (id, created_at, title, notes, tier, request_json, result_json, totals_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.CreatedAt.Format(timeLayout), snap.Title, snap.Notes, string(snap.Result.Tier),
		string(snap.Request), string(result), string(totals)); err != nil {
		return Snapshot{}, fmt.Errorf("insert quote: %w", err)
	}

	evicted := int64(0)
	if s.limit > 0 {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM quotes
			WHERE id NOT IN (
				SELECT id FROM quotes ORDER BY created_at DESC, rowid DESC LIMIT ?
			)
		`, s.limit)
		if err != nil {
			return Snapshot{}, fmt.Errorf("evict old quotes: %w", err)
		}
		if evicted, err = res.RowsAffected(); err != nil {
			return Snapshot{}, fmt.Errorf("count evicted quotes: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit quote: %w", err)
	}

	if evicted > 0 {
		observability.FromContext(ctx).Info("quote history trimmed",
			zap.Int64("evicted", evicted),
			zap.Int("limit", s.limit),
		)
	}
	return snap, nil
}

// List returns snapshots newest first, filtered by title or notes when query is set.
func (s *Store) List(ctx context.Context, query string) ([]Item, error) {
	query = strings.TrimSpace(query)
	search := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, COALESCE(title, ''), totals_json, adjusted_json IS NOT NULL
		FROM quotes
		WHERE (? = '' OR COALESCE(title, '') LIKE ? OR COALESCE(notes, '') LIKE ?)
		ORDER BY created_at DESC, rowid DESC
	`, query, search, search)
	if err != nil {
		return nil, fmt.Errorf("query quotes: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var (
			item       Item
			createdAt  string
			totalsJSON string
		)
		if err := rows.Scan(&item.ID, &createdAt, &item.Title, &totalsJSON, &item.Adjusted); err != nil {
			return nil, fmt.Errorf("scan quote: %w", err)
		}
		item.CreatedAt = parseTime(createdAt)
		// A damaged totals column shows as zero rather than hiding the row.
		_ = json.Unmarshal([]byte(totalsJSON), &item.Totals)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quotes: %w", err)
	}
	return items, nil
}

// Get loads one snapshot by id.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	var (
		snap                Snapshot
		createdAt           string
		title, notes        sql.NullString
		request, result     string
		overrides, adjusted sql.NullString
		adjustedAt          sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, title, notes, request_json, result_json, overrides_json, adjusted_json, adjusted_at
		FROM quotes
		WHERE id = ?
	`, id).Scan(&snap.ID, &createdAt, &title, &notes, &request, &result, &overrides, &adjusted, &adjustedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("query quote %s: %w", id, err)
	}

	snap.CreatedAt = parseTime(createdAt)
	snap.Title = title.String
	snap.Notes = notes.String
	snap.Request = json.RawMessage(request)
	if err := json.Unmarshal([]byte(result), &snap.Result); err != nil {
		return Snapshot{}, fmt.Errorf("decode quote %s result: %w", id, err)
	}
	if overrides.Valid {
		if err := json.Unmarshal([]byte(overrides.String), &snap.Overrides); err != nil {
			return Snapshot{}, fmt.Errorf("decode quote %s overrides: %w", id, err)
		}
	}
	if adjusted.Valid {
		var r pricing.Result
		if err := json.Unmarshal([]byte(adjusted.String), &r); err != nil {
			return Snapshot{}, fmt.Errorf("decode quote %s adjustment: %w", id, err)
		}
		snap.Adjusted = &r
	}
	if adjustedAt.Valid {
		t := parseTime(adjustedAt.String)
		snap.AdjustedAt = &t
	}
	return snap, nil
}

// SaveAdjustment stores a manual override layer and its re-summed result next to the
// original result, replacing any earlier adjustment.
func (s *Store) SaveAdjustment(ctx context.Context, id string, overrides pricing.Overrides, adjusted pricing.Result) (Snapshot, error) {
	ov, err := json.Marshal(overrides)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode overrides: %w", err)
	}
	adj, err := json.Marshal(adjusted)
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode adjusted result: %w", err)
	}
	totals, err := json.Marshal(TotalsOf(adjusted))
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode totals: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE quotes
		SET overrides_json = ?, adjusted_json = ?, totals_json = ?, adjusted_at = ?
		WHERE id = ?
	`, string(ov), string(adj), string(totals), s.now().UTC().Format(timeLayout), id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("update quote %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Snapshot{}, fmt.Errorf("update quote %s: %w", id, err)
	}
	if n == 0 {
		return Snapshot{}, fmt.Errorf("quote %s: %w", id, ErrNotFound)
	}
	return s.Get(ctx, id)
}

func parseTime(raw string) time.Time {
	t, err := time.ParseInLocation(timeLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
