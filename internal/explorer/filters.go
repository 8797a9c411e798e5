package explorer

import (
	"fmt"
	"slices"

	"github.com/stacklok/toolhive-catalog-explorer/internal/filtering"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

// Filters is the set of active facet filters
type Filters struct {
	Organization string                  `json:"organization,omitempty"`
	Category     string                  `json:"category,omitempty"`
	Environment  filtering.Environment   `json:"environment,omitempty"`
	Prerogatives []filtering.Prerogative `json:"prerogatives,omitempty"`
}

// SetOrganization filters on an organization. The empty string clears it.
func (s *Session) SetOrganization(org string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organization = org
}

// SetCategory filters on a category. The empty string clears it.
func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.category = category
}

// SetEnvironment filters on an environment. The empty string clears it.
func (s *Session) SetEnvironment(name string) error {
	var env filtering.Environment
	if name != "" {
		var ok bool
		if env, ok = filtering.ParseEnvironment(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEnvironment, name)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.environment = env
	return nil
}

// SetPrerogatives requires every listed prerogative. An empty list clears
// the filter. Duplicates are ignored.
func (s *Session) SetPrerogatives(names []string) error {
	prerogatives, err := parsePrerogatives(names)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prerogatives = prerogatives
	return nil
}

func parsePrerogatives(names []string) ([]filtering.Prerogative, error) {
	prerogatives := make([]filtering.Prerogative, 0, len(names))
	for _, name := range names {
		p, ok := filtering.ParsePrerogative(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPrerogative, name)
		}
		if !slices.Contains(prerogatives, p) {
			prerogatives = append(prerogatives, p)
		}
	}
	return prerogatives, nil
}

// SetFilters replaces every facet filter at once, validating all of them
// before any is applied
func (s *Session) SetFilters(f Filters) error {
	if f.Environment != "" {
		if _, ok := filtering.ParseEnvironment(string(f.Environment)); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownEnvironment, f.Environment)
		}
	}
	names := make([]string, 0, len(f.Prerogatives))
	for _, p := range f.Prerogatives {
		names = append(names, string(p))
	}
	prerogatives, err := parsePrerogatives(names)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.organization = f.Organization
	s.category = f.Category
	s.environment = f.Environment
	s.prerogatives = prerogatives
	return nil
}

// ResetFilters clears every facet filter. The query and the sort are kept.
func (s *Session) ResetFilters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organization = ""
	s.category = ""
	s.environment = ""
	s.prerogatives = nil
}

// Filters returns the active facet filters
func (s *Session) Filters() Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Filters{
		Organization: s.organization,
		Category:     s.category,
		Environment:  s.environment,
		Prerogatives: slices.Clone(s.prerogatives),
	}
}

// SetSort selects a sort among the ones currently offered
func (s *Session) SetSort(key sorting.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.sortOptionsLocked(), key) {
		return fmt.Errorf("%w: %s", ErrSortUnavailable, key)
	}
	s.selection.Select(key)
	s.sortExplicit = true
	return nil
}

// Sort returns the active sort
func (s *Session) Sort() sorting.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Current()
}

// SortOptions returns the sorts currently offered, in display order
func (s *Session) SortOptions() []sorting.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortOptionsLocked()
}

func (s *Session) sortOptionsLocked() []sorting.Key {
	return sorting.Options(s.searchResults != nil, s.selection.Current(), s.hasCaller())
}
