// Package v0 provides the REST API handlers of the catalog explorer.
package v0

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/toolhive-catalog-explorer/internal/api/common"
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
	"github.com/stacklok/toolhive-catalog-explorer/internal/query"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
	"github.com/stacklok/toolhive-catalog-explorer/internal/versions"
)

//go:generate mockgen -destination=mocks/mock_explorer.go -package=mocks -source=routes.go Explorer

// Explorer is the part of an explorer session exposed over HTTP
type Explorer interface {
	IsReady() bool
	View() explorer.View
	Sort() sorting.Key
	SortOptions() []sorting.Key
	Filters() explorer.Filters
	FacetOptions() explorer.FacetOptions
	SetQuery(ctx context.Context, raw string) error
	Flush()
	LoadMore()
	SetSort(key sorting.Key) error
	SetFilters(f explorer.Filters) error
	Dereference(ctx context.Context, id int) error
	UpdateDeclaration(ctx context.Context, id int, decl catalog.Declaration) error
}

var _ Explorer = (*explorer.Session)(nil)

// Routes holds the catalog handlers
type Routes struct {
	explorer Explorer
}

// NewRoutes creates a new Routes instance with the provided explorer
func NewRoutes(exp Explorer) *Routes {
	return &Routes{explorer: exp}
}

// Router creates the router of the catalog API
func Router(exp Explorer) http.Handler {
	routes := NewRoutes(exp)

	r := chi.NewRouter()
	r.Get("/records", routes.getRecords)
	r.Delete("/records/{id}", routes.dereferenceRecord)
	r.Put("/records/{id}/declaration", routes.updateDeclaration)
	r.Get("/options", routes.getOptions)
	r.Put("/query", routes.setQuery)
	r.Post("/more", routes.loadMore)
	r.Put("/sort", routes.setSort)
	r.Put("/filters", routes.setFilters)
	return r
}

// HealthRouter creates a router for health check endpoints
func HealthRouter(exp Explorer) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", healthHandler)
	r.Get("/readiness", readinessHandler(exp))
	r.Get("/version", versionHandler)

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, map[string]string{"status": "healthy"}, http.StatusOK)
}

// readinessHandler reports ready once the catalog has been fetched
func readinessHandler(exp Explorer) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !exp.IsReady() {
			common.WriteErrorResponse(w, "catalog not fetched yet", http.StatusServiceUnavailable)
			return
		}
		common.WriteJSONResponse(w, map[string]string{"status": "ready"}, http.StatusOK)
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, versions.GetVersionInfo(), http.StatusOK)
}

// getRecords handles GET /v0/catalog/records
func (rr *Routes) getRecords(w http.ResponseWriter, _ *http.Request) {
	view := rr.explorer.View()
	resp := RecordsResponse{
		State:       StateNotFetched,
		IsFetching:  view.IsFetching,
		QueryString: view.QueryString,
		Sort:        view.Sort,
		Records:     []catalog.ExternalRecord{},
	}
	if view.Ready {
		resp.State = StateReady
		resp.IsFetching = false
		resp.IsProcessing = view.IsProcessing
		resp.Records = view.Records
		resp.TotalCount = view.TotalCount
		resp.HasMore = view.HasMore
	}

	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// getOptions handles GET /v0/catalog/options
func (rr *Routes) getOptions(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSONResponse(w, OptionsResponse{
		Sort:        rr.explorer.Sort(),
		SortOptions: rr.explorer.SortOptions(),
		Filters:     rr.explorer.Filters(),
		Facets:      rr.explorer.FacetOptions(),
	}, http.StatusOK)
}

// setQuery handles PUT /v0/catalog/query
func (rr *Routes) setQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !common.DecodeJSONBody(w, r, &req) {
		return
	}

	if err := rr.explorer.SetQuery(r.Context(), req.Query); err != nil {
		if errors.Is(err, query.ErrMalformedQuery) {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to set query", "error", err)
		common.WriteErrorResponse(w, "Failed to set query", http.StatusInternalServerError)
		return
	}
	if req.Immediate {
		rr.explorer.Flush()
	}
	w.WriteHeader(http.StatusAccepted)
}

// loadMore handles POST /v0/catalog/more
func (rr *Routes) loadMore(w http.ResponseWriter, _ *http.Request) {
	rr.explorer.LoadMore()
	w.WriteHeader(http.StatusAccepted)
}

// setSort handles PUT /v0/catalog/sort
func (rr *Routes) setSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if !common.DecodeJSONBody(w, r, &req) {
		return
	}

	key, ok := sorting.ParseKey(req.Sort)
	if !ok {
		common.WriteErrorResponse(w, "Unknown sort: "+req.Sort, http.StatusBadRequest)
		return
	}
	if err := rr.explorer.SetSort(key); err != nil {
		if errors.Is(err, explorer.ErrSortUnavailable) {
			common.WriteErrorResponse(w, err.Error(), http.StatusConflict)
			return
		}
		slog.Error("Failed to set sort", "error", err)
		common.WriteErrorResponse(w, "Failed to set sort", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// setFilters handles PUT /v0/catalog/filters
func (rr *Routes) setFilters(w http.ResponseWriter, r *http.Request) {
	var req explorer.Filters
	if !common.DecodeJSONBody(w, r, &req) {
		return
	}

	if err := rr.explorer.SetFilters(req); err != nil {
		if errors.Is(err, explorer.ErrUnknownEnvironment) || errors.Is(err, explorer.ErrUnknownPrerogative) {
			common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
			return
		}
		slog.Error("Failed to set filters", "error", err)
		common.WriteErrorResponse(w, "Failed to set filters", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// dereferenceRecord handles DELETE /v0/catalog/records/{id}
func (rr *Routes) dereferenceRecord(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetRecordIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := rr.explorer.Dereference(r.Context(), id); err != nil {
		rr.writeMutationError(w, "Failed to dereference record", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// updateDeclaration handles PUT /v0/catalog/records/{id}/declaration
func (rr *Routes) updateDeclaration(w http.ResponseWriter, r *http.Request) {
	id, err := common.GetRecordIDParam(r, "id")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req DeclarationRequest
	if !common.DecodeJSONBody(w, r, &req) {
		return
	}

	decl := catalog.Declaration{IsUser: req.IsUser, IsReferent: req.IsReferent}
	if err := rr.explorer.UpdateDeclaration(r.Context(), id, decl); err != nil {
		rr.writeMutationError(w, "Failed to update declaration", id, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (*Routes) writeMutationError(w http.ResponseWriter, message string, id int, err error) {
	switch {
	case errors.Is(err, catalog.ErrRecordNotFound):
		common.WriteErrorResponse(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, explorer.ErrSessionClosed):
		common.WriteErrorResponse(w, err.Error(), http.StatusServiceUnavailable)
	default:
		slog.Error(message, "record_id", id, "error", err)
		common.WriteErrorResponse(w, message, http.StatusBadGateway)
	}
}
