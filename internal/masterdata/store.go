package masterdata

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("master data record not found")
	// ErrInvalid is returned when a record fails validation before saving.
	ErrInvalid = errors.New("invalid master data record")
)

const (
	cacheKeySettings   = "settings"
	cacheKeyContainers = "container_types"
)

// Store reads and writes master data. Settings and container types are served from a
// read cache that every save invalidates.
type Store struct {
	db    *sql.DB
	cache *gocache.Cache
}

// NewStore returns a Store. A non-positive ttl disables the read cache.
func NewStore(db *sql.DB, ttl time.Duration) *Store {
	s := &Store{db: db}
	if ttl > 0 {
		s.cache = gocache.New(ttl, 2*ttl)
	}
	return s
}

func (s *Store) cached(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *Store) remember(key string, value any) {
	if s.cache != nil {
		s.cache.SetDefault(key, value)
	}
}

func (s *Store) forget(key string) {
	if s.cache != nil {
		s.cache.Delete(key)
	}
}

func notFound(kind string, key any, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
	}
	return fmt.Errorf("query %s %v: %w", kind, key, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// checkAffected maps an update that touched no rows to ErrNotFound.
func checkAffected(res sql.Result, kind string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %d: %w", kind, id, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}
