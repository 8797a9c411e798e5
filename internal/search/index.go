// Package search provides the full-text index used by the catalog explorer.
//
// Records are indexed on their search blob with a folding analyzer, so
// "eole" matches "Éole" and "POSTGRES" matches "PostgreSQL". Both the index
// and the last query results are memoized per collection version.
package search

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/custom"
	"github.com/blevesearch/bleve/v2/analysis/char/asciifolding"
	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	unicodetokenizer "github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
	"github.com/blevesearch/bleve/v2/mapping"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
)

const (
	// DefaultMinQueryLength is the minimum number of runes a query needs to dispatch a search
	DefaultMinQueryLength = 3

	analyzerName = "catalog_folding"
	searchField  = "search"

	exactBoost  = 3.0
	prefixBoost = 2.0
	fuzzyMinLen = 4
)

// BuildStatus reports whether Indexer.Index built a new index
type BuildStatus int

const (
	// IndexBuilt means a new index was built for the collection version
	IndexBuilt BuildStatus = iota
	// IndexBuildSkipped means the memoized index for the same version was reused
	IndexBuildSkipped
)

// String returns the status name
func (s BuildStatus) String() string {
	switch s {
	case IndexBuilt:
		return "built"
	case IndexBuildSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Hit is a single search match
type Hit struct {
	// ID is the matched record id
	ID int
	// Positions are zero-based rune offsets into the display name
	Positions []int
}

// Index is an immutable full-text index over one collection version
type Index struct {
	bleveIndex bleve.Index
	names      map[int]string
	size       int
}

type document struct {
	Search string `json:"search"`
}

// NewIndex builds an in-memory index over the search blob of the given records
func NewIndex(records []*catalog.Record) (*Index, error) {
	idx, err := bleve.NewMemOnly(newIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	batch := idx.NewBatch()
	names := make(map[int]string, len(records))
	for _, rec := range records {
		if err := batch.Index(strconv.Itoa(rec.ID), document{Search: norm.NFC.String(rec.Search)}); err != nil {
			_ = idx.Close()
			return nil, fmt.Errorf("failed to index record %d: %w", rec.ID, err)
		}
		names[rec.ID] = rec.Name
	}
	if err := idx.Batch(batch); err != nil {
		_ = idx.Close()
		return nil, fmt.Errorf("failed to commit search index: %w", err)
	}

	return &Index{bleveIndex: idx, names: names, size: len(records)}, nil
}

func newIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	if err := indexMapping.AddCustomAnalyzer(analyzerName, map[string]interface{}{
		"type":          custom.Name,
		"char_filters":  []string{asciifolding.Name},
		"tokenizer":     unicodetokenizer.Name,
		"token_filters": []string{lowercase.Name},
	}); err != nil {
		// The analyzer definition is static
		panic(fmt.Sprintf("failed to register search analyzer: %v", err))
	}

	docMapping := bleve.NewDocumentMapping()
	searchFieldMapping := bleve.NewTextFieldMapping()
	searchFieldMapping.Analyzer = analyzerName
	searchFieldMapping.Store = false
	searchFieldMapping.IncludeTermVectors = false
	docMapping.AddFieldMappingsAt(searchField, searchFieldMapping)

	indexMapping.DefaultMapping = docMapping
	indexMapping.DefaultAnalyzer = analyzerName
	return indexMapping
}

// Search runs a free-text query against the index. Results are ordered by
// relevance, ties broken by ascending record id. A query with no match
// returns an empty, non-nil slice.
func (i *Index) Search(text string) ([]Hit, error) {
	terms := Terms(text)
	if len(terms) == 0 || i.size == 0 {
		return []Hit{}, nil
	}

	req := bleve.NewSearchRequestOptions(buildQuery(terms), i.size, 0, false)
	res, err := i.bleveIndex.Search(req)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	type scored struct {
		id    int
		score float64
	}
	matches := make([]scored, 0, len(res.Hits))
	for _, h := range res.Hits {
		id, err := strconv.Atoi(h.ID)
		if err != nil {
			slog.Warn("Skipping search hit with non-numeric id", "id", h.ID)
			continue
		}
		matches = append(matches, scored{id: id, score: h.Score})
	}
	slices.SortStableFunc(matches, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return a.id - b.id
		}
	})

	hits := make([]Hit, 0, len(matches))
	for _, m := range matches {
		hits = append(hits, Hit{ID: m.id, Positions: Positions(i.names[m.id], terms)})
	}
	return hits, nil
}

// Close releases the underlying index
func (i *Index) Close() error {
	return i.bleveIndex.Close()
}

func buildQuery(terms []string) bquery.Query {
	clauses := make([]bquery.Query, 0, len(terms)*4)
	for _, term := range terms {
		exact := bleve.NewTermQuery(term)
		exact.SetField(searchField)
		exact.SetBoost(exactBoost)

		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField(searchField)
		prefix.SetBoost(prefixBoost)

		substring := bleve.NewWildcardQuery("*" + escapeWildcard(term) + "*")
		substring.SetField(searchField)

		clauses = append(clauses, exact, prefix, substring)

		if utf8.RuneCountInString(term) >= fuzzyMinLen {
			fuzzy := bleve.NewFuzzyQuery(term)
			fuzzy.SetField(searchField)
			fuzzy.SetFuzziness(1)
			clauses = append(clauses, fuzzy)
		}
	}
	return bleve.NewDisjunctionQuery(clauses...)
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(term string) string {
	return wildcardEscaper.Replace(term)
}

// queryAnalyzer is the analyzer of the search field, so query terms are
// tokenized and folded exactly like the indexed blobs
var queryAnalyzer = sync.OnceValue(func() analysis.Analyzer {
	analyzer := newIndexMapping().AnalyzerNamed(analyzerName)
	if analyzer == nil {
		panic(fmt.Sprintf("search analyzer %q is not registered", analyzerName))
	}
	return analyzer
})

// Terms splits a query into the distinct folded terms the index holds for
// the same text: "Open-Source" yields "open" and "source", "Œuvre" yields
// "oeuvre"
func Terms(text string) []string {
	tokens := queryAnalyzer().Analyze([]byte(norm.NFC.String(text)))
	terms := make([]string, 0, len(tokens))
	for _, token := range tokens {
		term := string(token.Term)
		if term != "" && !slices.Contains(terms, term) {
			terms = append(terms, term)
		}
	}
	return terms
}

// MeetsMinLength reports whether a query is long enough to dispatch a search
func MeetsMinLength(text string, minLength int) bool {
	return utf8.RuneCountInString(text) >= minLength
}

type queryKey struct {
	version uint64
	text    string
}

// Indexer memoizes the index of the latest collection version along with
// the results of the latest query. It is not safe for concurrent use.
type Indexer struct {
	indexes *lru.Cache[uint64, *Index]
	results *lru.Cache[queryKey, []Hit]
}

// NewIndexer creates an Indexer holding a single index and a single result set
func NewIndexer() *Indexer {
	indexes, err := lru.NewWithEvict[uint64, *Index](1, func(version uint64, idx *Index) {
		if err := idx.Close(); err != nil {
			slog.Warn("Failed to close evicted search index", "version", version, "error", err)
		}
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create index cache: %v", err))
	}
	results, err := lru.New[queryKey, []Hit](1)
	if err != nil {
		panic(fmt.Sprintf("failed to create result cache: %v", err))
	}
	return &Indexer{indexes: indexes, results: results}
}

// Index returns the index for the given collection version, building it when
// the version differs from the memoized one
func (x *Indexer) Index(records []*catalog.Record, version uint64) (*Index, BuildStatus, error) {
	if idx, ok := x.indexes.Get(version); ok {
		return idx, IndexBuildSkipped, nil
	}

	idx, err := NewIndex(records)
	if err != nil {
		return nil, IndexBuilt, err
	}
	x.indexes.Add(version, idx)
	slog.Debug("Built search index", "version", version, "record_count", len(records))
	return idx, IndexBuilt, nil
}

// Search runs the query against the given collection version, reusing the
// previous result when both the version and the query text are unchanged.
// The returned slice is shared with the cache and must not be modified.
func (x *Indexer) Search(records []*catalog.Record, version uint64, text string) ([]Hit, error) {
	key := queryKey{version: version, text: text}
	if hits, ok := x.results.Get(key); ok {
		return hits, nil
	}

	idx, _, err := x.Index(records, version)
	if err != nil {
		return nil, err
	}
	hits, err := idx.Search(text)
	if err != nil {
		return nil, err
	}
	x.results.Add(key, hits)
	return hits, nil
}

// Close releases the memoized index
func (x *Indexer) Close() {
	x.indexes.Purge()
	x.results.Purge()
}
