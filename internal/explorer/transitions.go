package explorer

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-catalog-explorer/internal/debounce"
	"github.com/stacklok/toolhive-catalog-explorer/internal/otel"
	"github.com/stacklok/toolhive-catalog-explorer/internal/query"
	"github.com/stacklok/toolhive-catalog-explorer/internal/search"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

// SetQuery requests a new query string. A malformed structured token is
// rejected and nothing changes. Reference changes, searches below the
// minimum length and pasted text commit immediately; incremental typing
// commits once the search debounce window has elapsed. A request superseded
// before its window elapses never commits.
func (s *Session) SetQuery(ctx context.Context, raw string) error {
	q, err := query.Parse(raw)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}

	prev := s.requested
	s.requested = raw
	s.querySeq++
	seq := s.querySeq

	switch {
	case !query.SameReference(q.ReferenceID, s.parsed.ReferenceID):
		// reference lookups are never debounced
	case q.Search == s.parsed.Search:
		// back to the committed search, whatever was pending is stale
		s.searchDebouncer.Cancel()
		return nil
	case q.Search != "" && !search.MeetsMinLength(q.Search, s.minSearchLength):
		// too short to search, commits with no search active
	case !s.ready:
		// nothing to search yet, the search runs at fetch
	case debounce.ShouldBypass(prev, raw):
		// pasted or restored
	default:
		s.searchDebouncer.Schedule(func() { s.commitIfCurrent(seq, raw, q) })
		return nil
	}

	s.searchDebouncer.Cancel()
	return s.commitLocked(ctx, raw, q)
}

// commitIfCurrent commits a debounced query unless a later request
// superseded it
func (s *Session) commitIfCurrent(seq uint64, raw string, q query.Query) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || seq != s.querySeq {
		return
	}
	if err := s.commitLocked(context.Background(), raw, q); err != nil {
		slog.Error("Failed to commit debounced query", "session_id", s.id, "error", err)
	}
}

// commitLocked makes q the committed query. Caller must hold s.mu.
func (s *Session) commitLocked(ctx context.Context, raw string, q query.Query) error {
	wasSearching := s.searchRequested()

	s.queryString = raw
	s.parsed = q
	if raw == "" {
		s.displayCount = s.pageSize
	}

	// best match follows the search boundary only, not every keystroke
	switch searching := s.searchRequested(); {
	case searching && !wasSearching:
		s.selection.Select(sorting.BestMatch)
	case !searching && wasSearching:
		s.selection.Restore()
	}

	return s.refreshSearchLocked(ctx)
}

// searchRequested reports whether the committed query carries a search long
// enough to be dispatched. Caller must hold s.mu.
func (s *Session) searchRequested() bool {
	return s.parsed.Search != "" && search.MeetsMinLength(s.parsed.Search, s.minSearchLength)
}

// refreshSearchLocked re-runs the committed search against the current
// collection, or clears the results when no search is requested. Caller
// must hold s.mu.
func (s *Session) refreshSearchLocked(ctx context.Context) error {
	if !s.searchRequested() {
		if s.searchResults != nil {
			s.searchResults = nil
			s.searchVersion++
		}
		return nil
	}
	if !s.ready {
		return nil
	}

	ctx, span := otel.StartSpan(ctx, s.tracer, "explorer.Search",
		trace.WithAttributes(
			otel.AttrCatalogName.String(s.catalogName),
			otel.AttrSearchLength.Int(len([]rune(s.parsed.Search))),
		),
	)
	start := time.Now()

	_, status, err := s.indexer.Index(s.records, s.version)
	if err == nil {
		s.metrics.RecordIndexBuild(ctx, s.catalogName, status.String())
		span.SetAttributes(otel.AttrIndexStatus.String(status.String()))
	}

	var hits []search.Hit
	if err == nil {
		hits, err = s.indexer.Search(s.records, s.version, s.parsed.Search)
	}
	if err != nil {
		// an active search that failed shows no results rather than the whole collection
		hits = []search.Hit{}
	}

	s.searchResults = hits
	s.searchVersion++
	s.metrics.RecordSearch(ctx, s.catalogName, time.Since(start), len(hits))
	span.SetAttributes(otel.AttrResultCount.Int(len(hits)))
	otel.End(span, err)
	return err
}

// LoadMore requests the next page. Rapid requests within the load-more
// window count once. A request landing before the collection is loaded is
// applied when it arrives.
func (s *Session) LoadMore() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.loadMoreDebouncer.Schedule(s.bumpDisplayCount)
}

func (s *Session) bumpDisplayCount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if !s.ready {
		s.pendingBumps++
		return
	}
	s.displayCount += s.pageSize
}

// HasMoreToLoad reports whether the paginated list hides matching records
func (s *Session) HasMoreToLoad() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMoreLocked()
}

func (s *Session) hasMoreLocked() bool {
	if !s.ready || s.queryString != "" {
		return false
	}
	return s.displayCount < len(s.matchesLocked())
}

// QueryString returns the committed query string
func (s *Session) QueryString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryString
}

// DisplayCount returns the number of records revealed while the query is empty
func (s *Session) DisplayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayCount
}
