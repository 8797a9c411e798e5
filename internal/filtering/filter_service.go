package filtering

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
)

// FilterService selects the source records that enter the catalog
type FilterService interface {
	// ApplyFilters returns the records passing the filter configuration
	ApplyFilters(
		ctx context.Context,
		records []catalog.APIRecord,
		filter *config.FilterConfig,
	) ([]catalog.APIRecord, error)
}

// defaultFilterService combines name and category filtering
type defaultFilterService struct {
	nameFilter     NameFilter
	categoryFilter CategoryFilter
}

// NewDefaultFilterService creates a new FilterService with default filter implementations
func NewDefaultFilterService() FilterService {
	return &defaultFilterService{
		nameFilter:     NewDefaultNameFilter(),
		categoryFilter: NewDefaultCategoryFilter(),
	}
}

// NewFilterService creates a new FilterService with custom filter implementations
func NewFilterService(nameFilter NameFilter, categoryFilter CategoryFilter) FilterService {
	return &defaultFilterService{
		nameFilter:     nameFilter,
		categoryFilter: categoryFilter,
	}
}

// ApplyFilters filters the source records based on filter configuration.
// A nil filter returns the records unchanged. Invalid name patterns fail the
// whole operation before any record is inspected.
func (s *defaultFilterService) ApplyFilters(
	_ context.Context,
	records []catalog.APIRecord,
	filter *config.FilterConfig) ([]catalog.APIRecord, error) {
	if filter == nil {
		slog.Debug("No source filter specified, keeping all records", "record_count", len(records))
		return records, nil
	}

	var nameInclude, nameExclude, categoryInclude, categoryExclude []string
	if filter.Names != nil {
		nameInclude = filter.Names.Include
		nameExclude = filter.Names.Exclude
	}
	if filter.Categories != nil {
		categoryInclude = filter.Categories.Include
		categoryExclude = filter.Categories.Exclude
	}

	if err := ValidatePatterns(nameInclude, nameExclude); err != nil {
		return nil, fmt.Errorf("invalid name filter: %w", err)
	}

	slog.Info("Applying source filters", "original_record_count", len(records))

	filtered := make([]catalog.APIRecord, 0, len(records))
	excludedCount := 0
	for _, rec := range records {
		included, reason := s.shouldIncludeWithReason(
			rec.Name,
			rec.Categories,
			nameInclude,
			nameExclude,
			categoryInclude,
			categoryExclude,
		)
		if included {
			filtered = append(filtered, rec)
			slog.Debug("Including record", "id", rec.ID, "name", rec.Name, "reason", reason)
			continue
		}
		excludedCount++
		slog.Debug("Excluding record", "id", rec.ID, "name", rec.Name, "reason", reason)
	}

	slog.Info("Source filtering completed",
		"included_records", len(filtered),
		"excluded_records", excludedCount)

	return filtered, nil
}

// shouldIncludeWithReason requires both the name and the category filter to pass
func (s *defaultFilterService) shouldIncludeWithReason(
	name string,
	categories []string,
	nameInclude, nameExclude, categoryInclude, categoryExclude []string) (bool, string) {
	nameIncluded, nameReason := s.nameFilter.ShouldInclude(name, nameInclude, nameExclude)
	if !nameIncluded {
		return false, "name filter: " + nameReason
	}

	categoryIncluded, categoryReason := s.categoryFilter.ShouldInclude(categories, categoryInclude, categoryExclude)
	if !categoryIncluded {
		return false, "category filter: " + categoryReason
	}

	var reasons []string
	if len(nameInclude) > 0 || len(nameExclude) > 0 {
		reasons = append(reasons, "name filter: "+nameReason)
	}
	if len(categoryInclude) > 0 || len(categoryExclude) > 0 {
		reasons = append(reasons, "category filter: "+categoryReason)
	}
	if len(reasons) == 0 {
		return true, "no filters specified, default include"
	}
	return true, "passed all filters: " + strings.Join(reasons, " AND ")
}
