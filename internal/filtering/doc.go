// Package filtering narrows catalog records.
//
// Two independent mechanisms live here:
//
//   - FilterService selects which source records enter the catalog at all,
//     from the filter section of the configuration. Names are matched with
//     case-insensitive glob patterns (gobwas/glob, '*' crosses any
//     character), categories with exact strings. Exclude rules take
//     precedence over include rules and a record must pass both the name and
//     the category filter.
//
//   - FacetEngine answers the interactive filters of an explorer session:
//     search membership, reference lookup, organization, category,
//     environment and prerogatives, always applied in that order. Option
//     counts for a facet are computed with every active filter except that
//     facet, so the count next to a value is the number of records the
//     user would see after selecting it.
//
// Example source filter:
//
//	filter := &config.FilterConfig{
//		Names: &config.NameFilterConfig{
//			Exclude: []string{"*-legacy"},
//		},
//		Categories: &config.CategoryFilterConfig{
//			Include: []string{"office", "database"},
//		},
//	}
//
//	records, err := filtering.NewDefaultFilterService().ApplyFilters(ctx, collection.Records, filter)
package filtering
