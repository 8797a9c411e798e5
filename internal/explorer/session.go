// Package explorer holds the catalog explorer session: the authoritative
// state of one browsing session over a catalog collection.
//
// A Session owns the canonical collection together with the committed query,
// the active filters, the sort selection and the pagination cursor. Derived
// views (filtered records, facet options, search results) are recomputed from
// that state and memoized on their exact inputs. Every mutation is serialized
// through the session mutex; provider I/O happens outside of it and the state
// is re-validated once the call returns.
package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.opentelemetry.io/otel/trace"
	"k8s.io/utils/clock"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/debounce"
	"github.com/stacklok/toolhive-catalog-explorer/internal/filtering"
	"github.com/stacklok/toolhive-catalog-explorer/internal/otel"
	"github.com/stacklok/toolhive-catalog-explorer/internal/query"
	"github.com/stacklok/toolhive-catalog-explorer/internal/search"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
	"github.com/stacklok/toolhive-catalog-explorer/internal/telemetry"
)

// TracerName is the name of the session tracer
const TracerName = "github.com/stacklok/toolhive-catalog-explorer/explorer"

type options struct {
	catalogName     string
	clock           clock.WithDelayedExecution
	pageSize        int
	minSearchLength int
	searchDelay     time.Duration
	loadMoreDelay   time.Duration
	sourceFilter    *config.FilterConfig
	filterService   filtering.FilterService
	facetEngine     filtering.FacetEngine
	sortTable       *sorting.Table
	metrics         *telemetry.CatalogMetrics
	tracer          trace.Tracer
}

// Option configures a Session
type Option func(*options) error

// WithCatalogName sets the catalog name reported in logs and metrics
func WithCatalogName(name string) Option {
	return func(o *options) error {
		o.catalogName = name
		return nil
	}
}

// WithClock sets the clock driving both debouncers
func WithClock(clk clock.WithDelayedExecution) Option {
	return func(o *options) error {
		if clk == nil {
			return fmt.Errorf("clock is required")
		}
		o.clock = clk
		return nil
	}
}

// WithPageSize sets the number of records revealed per page
func WithPageSize(size int) Option {
	return func(o *options) error {
		if size <= 0 {
			return fmt.Errorf("page size must be greater than zero, got %d", size)
		}
		o.pageSize = size
		return nil
	}
}

// WithMinSearchLength sets the shortest search text that dispatches a search
func WithMinSearchLength(length int) Option {
	return func(o *options) error {
		if length < 0 {
			return fmt.Errorf("minimum search length must not be negative, got %d", length)
		}
		o.minSearchLength = length
		return nil
	}
}

// WithDebounceDelays sets the search and load-more quiet periods
func WithDebounceDelays(searchDelay, loadMoreDelay time.Duration) Option {
	return func(o *options) error {
		if searchDelay < 0 || loadMoreDelay < 0 {
			return fmt.Errorf("debounce delays must not be negative")
		}
		o.searchDelay = searchDelay
		o.loadMoreDelay = loadMoreDelay
		return nil
	}
}

// WithExplorerConfig applies the explorer section of the configuration file
func WithExplorerConfig(cfg *config.ExplorerConfig) Option {
	return func(o *options) error {
		if cfg == nil {
			return nil
		}
		o.pageSize = cfg.GetPageSize()
		o.minSearchLength = cfg.GetMinSearchLength()
		o.searchDelay = cfg.GetSearchDebounce()
		o.loadMoreDelay = cfg.GetLoadMoreDebounce()
		return nil
	}
}

// WithSourceFilter sets the name and category filter applied at fetch time
func WithSourceFilter(filter *config.FilterConfig) Option {
	return func(o *options) error {
		o.sourceFilter = filter
		return nil
	}
}

// WithFilterService replaces the service applying the source filter
func WithFilterService(fs filtering.FilterService) Option {
	return func(o *options) error {
		o.filterService = fs
		return nil
	}
}

// WithFacetEngine replaces the facet engine
func WithFacetEngine(fe filtering.FacetEngine) Option {
	return func(o *options) error {
		o.facetEngine = fe
		return nil
	}
}

// WithSortTable replaces the sort strategy table. The table is owned by the
// session afterwards.
func WithSortTable(table *sorting.Table) Option {
	return func(o *options) error {
		o.sortTable = table
		return nil
	}
}

// WithMetrics sets the catalog metrics. Nil disables metrics.
func WithMetrics(metrics *telemetry.CatalogMetrics) Option {
	return func(o *options) error {
		o.metrics = metrics
		return nil
	}
}

// WithTracer sets the tracer for session operations. Nil disables tracing.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		o.tracer = tracer
		return nil
	}
}

// Session is one catalog browsing session. It is safe for concurrent use.
type Session struct {
	id          string
	catalogName string
	provider    catalog.Provider

	pageSize        int
	minSearchLength int
	sourceFilter    *config.FilterConfig
	filterService   filtering.FilterService
	facets          filtering.FacetEngine
	sorts           *sorting.Table
	metrics         *telemetry.CatalogMetrics
	tracer          trace.Tracer

	searchDebouncer   *debounce.Debouncer
	loadMoreDebouncer *debounce.Debouncer

	mu sync.Mutex

	closed   bool
	fetching bool
	ready    bool

	records     []*catalog.Record
	version     uint64
	callerEmail string
	processing  int

	// requested is the most recent raw query string handed to SetQuery,
	// queryString and parsed the last committed one
	requested   string
	querySeq    uint64
	queryString string
	parsed      query.Query

	// searchResults is nil while no search is active
	indexer       *search.Indexer
	searchResults []search.Hit
	searchVersion uint64

	displayCount int
	pendingBumps int

	selection    sorting.Selection
	sortExplicit bool

	organization string
	category     string
	environment  filtering.Environment
	prerogatives []filtering.Prerogative

	matchCache  *lru.Cache[viewKey, []filtering.Match]
	optionCache *lru.Cache[viewKey, FacetOptions]
}

// New creates a Session backed by provider. The collection is not loaded
// until Fetch is called.
func New(provider catalog.Provider, opts ...Option) (*Session, error) {
	if provider == nil {
		return nil, fmt.Errorf("catalog provider is required")
	}

	o := &options{
		catalogName:     config.DefaultCatalogName,
		clock:           clock.RealClock{},
		pageSize:        config.DefaultPageSize,
		minSearchLength: search.DefaultMinQueryLength,
		searchDelay:     debounce.DefaultSearchDelay,
		loadMoreDelay:   debounce.DefaultLoadMoreDelay,
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	if o.filterService == nil {
		o.filterService = filtering.NewDefaultFilterService()
	}
	if o.facetEngine == nil {
		o.facetEngine = filtering.NewDefaultFacetEngine()
	}
	if o.sortTable == nil {
		o.sortTable = sorting.NewTable()
	}

	matchCache, err := lru.New[viewKey, []filtering.Match](1)
	if err != nil {
		return nil, fmt.Errorf("failed to create match cache: %w", err)
	}
	optionCache, err := lru.New[viewKey, FacetOptions](1)
	if err != nil {
		return nil, fmt.Errorf("failed to create option cache: %w", err)
	}

	s := &Session{
		id:                uuid.NewString(),
		catalogName:       o.catalogName,
		provider:          provider,
		pageSize:          o.pageSize,
		minSearchLength:   o.minSearchLength,
		sourceFilter:      o.sourceFilter,
		filterService:     o.filterService,
		facets:            o.facetEngine,
		sorts:             o.sortTable,
		metrics:           o.metrics,
		tracer:            o.tracer,
		searchDebouncer:   debounce.New(o.clock, o.searchDelay),
		loadMoreDebouncer: debounce.New(o.clock, o.loadMoreDelay),
		indexer:           search.NewIndexer(),
		displayCount:      o.pageSize,
		selection:         sorting.NewSelection(sorting.DefaultKey(false)),
		matchCache:        matchCache,
		optionCache:       optionCache,
	}

	slog.Debug("Created explorer session",
		"session_id", s.id,
		"catalog", s.catalogName,
		"source", provider.GetSource(),
	)
	return s, nil
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id
}

// Fetch loads the collection from the provider. It does nothing when the
// collection is already loaded or a fetch is in flight. On failure the
// session returns to NotFetched and Fetch may be called again.
func (s *Session) Fetch(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.ready || s.fetching {
		s.mu.Unlock()
		return nil
	}
	s.fetching = true
	s.mu.Unlock()

	ctx, span := otel.StartSpan(ctx, s.tracer, "explorer.Fetch",
		trace.WithAttributes(
			otel.AttrCatalogName.String(s.catalogName),
			otel.AttrCatalogSource.String(s.provider.GetSource()),
		),
	)
	start := time.Now()
	records, callerEmail, err := s.load(ctx)
	s.metrics.RecordFetchDuration(ctx, s.catalogName, time.Since(start), err == nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetching = false

	if s.closed {
		otel.End(span, ErrSessionClosed)
		slog.Debug("Discarding catalog fetched after close", "catalog", s.catalogName)
		return ErrSessionClosed
	}
	if err != nil {
		otel.End(span, err)
		slog.Error("Failed to fetch catalog", "catalog", s.catalogName, "error", err)
		return fmt.Errorf("%w: %w", catalog.ErrFetchFailed, err)
	}

	s.records = records
	s.callerEmail = callerEmail
	s.version++
	s.ready = true
	s.displayCount = s.pageSize * (1 + s.pendingBumps)
	s.pendingBumps = 0
	if !s.sortExplicit {
		s.selection = sorting.NewSelection(sorting.DefaultKey(s.hasCaller()))
		if s.searchRequested() {
			s.selection.Select(sorting.BestMatch)
		}
	}
	searchErr := s.refreshSearchLocked(ctx)

	s.metrics.RecordRecordsTotal(ctx, s.catalogName, int64(len(records)))
	span.SetAttributes(otel.AttrRecordCount.Int(len(records)))
	otel.End(span, searchErr)

	slog.Info("Loaded catalog",
		"catalog", s.catalogName,
		"record_count", len(records),
		"identified_caller", s.hasCaller(),
		"duration", time.Since(start),
	)
	return searchErr
}

// load fetches, source-filters and normalizes the collection
func (s *Session) load(ctx context.Context) ([]*catalog.Record, string, error) {
	collection, err := s.provider.FetchCollection(ctx)
	if err != nil {
		return nil, "", err
	}
	if collection == nil {
		return nil, "", fmt.Errorf("provider %s returned no collection", s.provider.GetSource())
	}

	filtered, err := s.filterService.ApplyFilters(ctx, collection.Records, s.sourceFilter)
	if err != nil {
		return nil, "", fmt.Errorf("failed to apply source filter: %w", err)
	}
	return catalog.Normalize(filtered, collection.Declarations), collection.CallerEmail, nil
}

// Flush commits the pending search and load-more updates now instead of
// waiting for their quiet period
func (s *Session) Flush() {
	s.searchDebouncer.Flush()
	s.loadMoreDebouncer.Flush()
}

// Close stops both debouncers and releases the search index. Pending
// updates never fire. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.searchDebouncer.Stop()
	s.loadMoreDebouncer.Stop()
	s.indexer.Close()
	s.matchCache.Purge()
	s.optionCache.Purge()
	slog.Debug("Closed explorer session", "session_id", s.id)
}

func (s *Session) hasCaller() bool {
	return s.callerEmail != ""
}

// CallerEmail returns the identity of the caller, empty when anonymous
func (s *Session) CallerEmail() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.callerEmail
}
