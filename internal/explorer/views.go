package explorer

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/filtering"
	"github.com/stacklok/toolhive-catalog-explorer/internal/search"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

// FacetOptions holds the option counts of every facet
type FacetOptions struct {
	Organizations []filtering.Option `json:"organizations"`
	Categories    []filtering.Option `json:"categories"`
	Environments  []filtering.Option `json:"environments"`
	Prerogatives  []filtering.Option `json:"prerogatives"`
}

// viewKey is the exact input tuple of a derived view
type viewKey struct {
	version       uint64
	searchVersion uint64
	hasReference  bool
	referenceID   int
	organization  string
	category      string
	environment   filtering.Environment
	prerogatives  string
	sort          sorting.Key
}

func (s *Session) viewKeyLocked(sort sorting.Key) viewKey {
	key := viewKey{
		version:       s.version,
		searchVersion: s.searchVersion,
		organization:  s.organization,
		category:      s.category,
		environment:   s.environment,
		sort:          sort,
	}
	if ref := s.parsed.ReferenceID; ref != nil {
		key.hasReference = true
		key.referenceID = *ref
	}
	names := make([]string, 0, len(s.prerogatives))
	for _, p := range s.prerogatives {
		names = append(names, string(p))
	}
	key.prerogatives = strings.Join(names, ",")
	return key
}

func (s *Session) criteriaLocked() filtering.Criteria {
	return filtering.Criteria{
		Search:       s.searchResults,
		ReferenceID:  s.parsed.ReferenceID,
		Organization: s.organization,
		Category:     s.category,
		Environment:  s.environment,
		Prerogatives: s.prerogatives,
	}
}

// matchesLocked returns the filtered and sorted collection. The result is
// shared with the cache and must not be modified. Caller must hold s.mu.
func (s *Session) matchesLocked() []filtering.Match {
	current := s.selection.Current()
	key := s.viewKeyLocked(current)
	if matches, ok := s.matchCache.Get(key); ok {
		return matches
	}

	filtered := s.facets.Filter(s.records, s.criteriaLocked())
	sorted, err := s.sorts.Sort(filtered, current)
	if err != nil {
		slog.Warn("Keeping filtered order", "sort", current, "error", err)
		sorted = filtered
	}
	s.matchCache.Add(key, sorted)
	return sorted
}

// Records returns the filtered and sorted records. While the query is empty
// only the first DisplayCount records are returned.
func (s *Session) Records() []catalog.ExternalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recordsLocked()
}

func (s *Session) recordsLocked() []catalog.ExternalRecord {
	if !s.ready {
		return []catalog.ExternalRecord{}
	}

	matches := s.matchesLocked()
	if s.queryString == "" && len(matches) > s.displayCount {
		matches = matches[:s.displayCount]
	}

	out := make([]catalog.ExternalRecord, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.Record.ToExternal(m.Positions, m.Matched))
	}
	return out
}

// TotalCount returns the number of records matching the query and filters
func (s *Session) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalCountLocked()
}

func (s *Session) totalCountLocked() int {
	if !s.ready {
		return 0
	}
	return len(s.matchesLocked())
}

// View is a consistent read of everything a records listing shows
type View struct {
	Ready        bool
	IsFetching   bool
	IsProcessing bool
	QueryString  string
	Sort         sorting.Key
	Records      []catalog.ExternalRecord
	TotalCount   int
	HasMore      bool
}

// View returns the listing selectors taken together under one lock, so the
// records, counts and sort never belong to different snapshots
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Ready:        s.ready,
		IsFetching:   s.fetching,
		IsProcessing: s.processing > 0,
		QueryString:  s.queryString,
		Sort:         s.selection.Current(),
		Records:      s.recordsLocked(),
		TotalCount:   s.totalCountLocked(),
		HasMore:      s.hasMoreLocked(),
	}
}

// FacetOptions returns the option counts of every facet. The count of a
// facet value ignores the facet's own selection.
func (s *Session) FacetOptions() FacetOptions {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := s.viewKeyLocked("")
	if options, ok := s.optionCache.Get(key); ok {
		return options
	}

	criteria := s.criteriaLocked()
	options := FacetOptions{
		Organizations: s.facets.OrganizationOptions(s.records, criteria),
		Categories:    s.facets.CategoryOptions(s.records, criteria),
		Environments:  s.facets.EnvironmentOptions(s.records, criteria),
		Prerogatives:  s.facets.PrerogativeOptions(s.records, criteria),
	}
	s.optionCache.Add(key, options)
	return options
}

// SearchResults returns the ranked hits of the active search, or nil when no
// search is active
func (s *Session) SearchResults() []search.Hit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.searchResults)
}
