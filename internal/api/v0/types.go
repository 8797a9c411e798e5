package v0

import (
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

// State names reported in RecordsResponse
const (
	StateNotFetched = "not_fetched"
	StateReady      = "ready"
)

// RecordsResponse is the current page of the catalog
type RecordsResponse struct {
	State        string                   `json:"state"`
	IsFetching   bool                     `json:"isFetching"`
	IsProcessing bool                     `json:"isProcessing"`
	QueryString  string                   `json:"queryString"`
	Sort         sorting.Key              `json:"sort"`
	TotalCount   int                      `json:"totalCount"`
	HasMore      bool                     `json:"hasMore"`
	Records      []catalog.ExternalRecord `json:"records"`
}

// OptionsResponse lists the sorts and facet values the user can pick from
type OptionsResponse struct {
	Sort        sorting.Key           `json:"sort"`
	SortOptions []sorting.Key         `json:"sortOptions"`
	Filters     explorer.Filters      `json:"filters"`
	Facets      explorer.FacetOptions `json:"facets"`
}

// QueryRequest updates the query string
type QueryRequest struct {
	Query string `json:"query"`
	// Immediate commits the query without waiting for the debounce window
	Immediate bool `json:"immediate,omitempty"`
}

// SortRequest selects a sort
type SortRequest struct {
	Sort string `json:"sort"`
}

// DeclarationRequest sets the caller declaration of a record
type DeclarationRequest struct {
	IsUser     bool `json:"isUser"`
	IsReferent bool `json:"isReferent"`
}
