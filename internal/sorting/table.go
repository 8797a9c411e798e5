// Package sorting holds the named sort strategies of the catalog explorer.
//
// A Table is built per explorer session. Each Strategy extracts an integer
// weight from a record and compares it in a fixed direction, optionally
// deferring to a tie breaker. The best match key has no strategy: the order
// produced by the search index is kept as is.
package sorting

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/filtering"
)

// Key names a sort order
type Key string

const (
	AddedTime                    Key = "added_time"
	UpdateTime                   Key = "update_time"
	LatestVersionPublicationDate Key = "latest_version_publication_date"
	ReferentCount                Key = "referent_count"
	ReferentCountAsc             Key = "referent_count_ASC"
	UserCount                    Key = "user_count"
	UserCountAsc                 Key = "user_count_ASC"
	MySoftware                   Key = "my_software"
	BestMatch                    Key = "best_match"
)

// Keys lists every built-in key
var Keys = []Key{
	AddedTime,
	UpdateTime,
	LatestVersionPublicationDate,
	ReferentCount,
	ReferentCountAsc,
	UserCount,
	UserCountAsc,
	MySoftware,
	BestMatch,
}

// ParseKey returns the built-in key with the given name
func ParseKey(name string) (Key, bool) {
	key := Key(name)
	return key, slices.Contains(Keys, key)
}

// Order is the direction a weight is compared in
type Order int

const (
	// Descending puts the heaviest records first
	Descending Order = iota
	// Ascending puts the lightest records first
	Ascending
)

// Strategy compares two records by weight
type Strategy struct {
	Weight     func(*catalog.Record) int64
	Order      Order
	TieBreaker *Strategy
}

// Compare returns a negative number when a sorts before b
func (s *Strategy) Compare(a, b *catalog.Record) int {
	c := cmp.Compare(s.Weight(a), s.Weight(b))
	if s.Order == Descending {
		c = -c
	}
	if c == 0 && s.TieBreaker != nil {
		return s.TieBreaker.Compare(a, b)
	}
	return c
}

// Table maps keys to strategies
type Table struct {
	strategies map[Key]*Strategy
}

// NewTable creates a Table with the built-in strategies registered
func NewTable() *Table {
	byUpdateTime := &Strategy{
		Weight: func(r *catalog.Record) int64 { return r.UpdateTime.UnixMilli() },
		Order:  Descending,
	}

	t := &Table{strategies: make(map[Key]*Strategy)}
	t.Register(AddedTime, &Strategy{
		Weight: func(r *catalog.Record) int64 { return r.AddedTime.UnixMilli() },
		Order:  Descending,
	})
	t.Register(UpdateTime, byUpdateTime)
	t.Register(LatestVersionPublicationDate, &Strategy{
		Weight:     latestPublication,
		Order:      Descending,
		TieBreaker: byUpdateTime,
	})
	t.Register(ReferentCount, &Strategy{
		Weight: func(r *catalog.Record) int64 { return int64(r.ReferentCount) },
		Order:  Descending,
	})
	t.Register(ReferentCountAsc, &Strategy{
		Weight: func(r *catalog.Record) int64 { return int64(r.ReferentCount) },
		Order:  Ascending,
	})
	t.Register(UserCount, &Strategy{
		Weight: func(r *catalog.Record) int64 { return int64(r.UserCount) },
		Order:  Descending,
	})
	t.Register(UserCountAsc, &Strategy{
		Weight: func(r *catalog.Record) int64 { return int64(r.UserCount) },
		Order:  Ascending,
	})
	t.Register(MySoftware, &Strategy{
		Weight: personalRelevance,
		Order:  Descending,
	})
	return t
}

// latestPublication is 0 for records without a known version
func latestPublication(r *catalog.Record) int64 {
	if r.LatestVersion == nil || r.LatestVersion.PublicationTime.IsZero() {
		return 0
	}
	return r.LatestVersion.PublicationTime.UnixMilli()
}

// personalRelevance is 2 for a referent, 1 for a user and 0 otherwise
func personalRelevance(r *catalog.Record) int64 {
	switch {
	case r.Declaration == nil:
		return 0
	case r.Declaration.IsReferent:
		return 2
	case r.Declaration.IsUser:
		return 1
	default:
		return 0
	}
}

// Register adds or replaces the strategy of a key
func (t *Table) Register(key Key, strategy *Strategy) {
	t.strategies[key] = strategy
}

// Lookup returns the strategy of a key. BestMatch has none.
func (t *Table) Lookup(key Key) (*Strategy, bool) {
	s, ok := t.strategies[key]
	return s, ok
}

// Sort returns the matches ordered by the key. The sort is stable so ties
// keep their incoming order. BestMatch returns the matches unchanged.
func (t *Table) Sort(matches []filtering.Match, key Key) ([]filtering.Match, error) {
	if key == BestMatch {
		return matches, nil
	}
	strategy, ok := t.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("no sort strategy registered for %q", key)
	}

	sorted := slices.Clone(matches)
	slices.SortStableFunc(sorted, func(a, b filtering.Match) int {
		return strategy.Compare(a.Record, b.Record)
	})
	return sorted, nil
}
