package filtering

import (
	"fmt"
	"slices"
)

// CategoryFilter handles category-based filtering using exact string matching
type CategoryFilter interface {
	// ShouldInclude determines if a record with the given categories should be included
	// Returns (shouldInclude bool, reason string)
	ShouldInclude(categories []string, include, exclude []string) (bool, string)
}

type defaultCategoryFilter struct{}

var _ CategoryFilter = (*defaultCategoryFilter)(nil)

// NewDefaultCategoryFilter creates a new CategoryFilter
func NewDefaultCategoryFilter() CategoryFilter {
	return &defaultCategoryFilter{}
}

// ShouldInclude applies the same precedence as NameFilter: any excluded
// category rejects the record, and when include categories are specified
// one of them must be present.
func (*defaultCategoryFilter) ShouldInclude(categories []string, include, exclude []string) (bool, string) {
	for _, category := range categories {
		if slices.Contains(exclude, category) {
			return false, fmt.Sprintf("excluded by category '%s'", category)
		}
	}

	if len(include) > 0 {
		for _, category := range categories {
			if slices.Contains(include, category) {
				return true, fmt.Sprintf("included by category '%s'", category)
			}
		}
		return false, fmt.Sprintf("no matching category in include list %v (record categories: %v)", include, categories)
	}

	if len(exclude) > 0 {
		return true, fmt.Sprintf("no matching category in exclude list %v", exclude)
	}
	return true, "no category filters specified"
}
