package explorer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog/mocks"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/query"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

const (
	waitFor = time.Second
	tick    = 5 * time.Millisecond
)

// thirtyRecords holds a postgres pair, a database neighbour and filler tools
func thirtyRecords() []catalog.APIRecord {
	records := []catalog.APIRecord{
		catalog.NewTestAPIRecord(1, "PostgreSQL",
			catalog.WithKeywords("database", "sql"),
			catalog.WithCategories("databases")),
		catalog.NewTestAPIRecord(2, "pgAdmin",
			catalog.WithKeywords("postgres", "admin"),
			catalog.WithCategories("databases")),
		catalog.NewTestAPIRecord(3, "MariaDB",
			catalog.WithKeywords("database", "mysql"),
			catalog.WithCategories("databases"),
			catalog.WithOrganizationCounts(map[string]catalog.OrganizationCounts{
				"DINUM": {UserCount: 2, ReferentCount: 1},
			})),
	}
	for id := 4; id <= 30; id++ {
		records = append(records, catalog.NewTestAPIRecord(id, fmt.Sprintf("Tool %02d", id)))
	}
	return records
}

type fixture struct {
	session  *Session
	provider *mocks.MockProvider
	clock    *testingclock.FakeClock
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GetSource().Return("mock:test").AnyTimes()

	clk := testingclock.NewFakeClock(time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC))
	session, err := New(provider, append([]Option{WithClock(clk)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(session.Close)

	return &fixture{session: session, provider: provider, clock: clk}
}

// ready fetches the given collection
func (f *fixture) ready(t *testing.T, collection *catalog.Collection) {
	t.Helper()
	f.provider.EXPECT().FetchCollection(gomock.Any()).Return(collection, nil)
	require.NoError(t, f.session.Fetch(context.Background()))
}

func recordIDs(records []catalog.ExternalRecord) []int {
	ids := make([]int, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids
}

func TestNewValidatesOptions(t *testing.T) {
	t.Parallel()

	_, err := New(nil)
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	_, err = New(provider, WithPageSize(0))
	require.Error(t, err)
	_, err = New(provider, WithMinSearchLength(-1))
	require.Error(t, err)
	_, err = New(provider, WithClock(nil))
	require.Error(t, err)
}

func TestNewAppliesExplorerConfig(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithExplorerConfig(&config.ExplorerConfig{PageSize: 10}))
	assert.Equal(t, 10, f.session.DisplayCount())
	assert.NotEmpty(t, f.session.ID())
}

func TestFetchPaginationEndToEnd(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})

	s := f.session
	assert.Equal(t, 24, s.DisplayCount())
	assert.True(t, s.HasMoreToLoad())
	assert.Len(t, s.Records(), 24)
	assert.Equal(t, 30, s.TotalCount())

	s.LoadMore()
	f.clock.Step(50 * time.Millisecond)
	assert.Eventually(t, func() bool { return s.DisplayCount() == 48 }, waitFor, tick)
	assert.False(t, s.HasMoreToLoad())
	assert.Len(t, s.Records(), 30)

	// setting a search whose text matches postgres
	require.NoError(t, s.SetQuery(context.Background(), "postgre"))
	require.NoError(t, s.SetQuery(context.Background(), "postgres"))
	assert.Equal(t, "postgre", s.QueryString(), "one character edit waits for the debounce")

	f.clock.Step(750 * time.Millisecond)
	assert.Eventually(t, func() bool { return s.QueryString() == "postgres" }, waitFor, tick)

	records := s.Records()
	assert.ElementsMatch(t, []int{1, 2}, recordIDs(records))
	assert.Equal(t, sorting.BestMatch, s.Sort())
	assert.False(t, s.HasMoreToLoad(), "pagination only applies to the empty query")

	for _, r := range records {
		require.NotNil(t, r.Highlight, "record %d matched the search", r.ID)
		switch r.ID {
		case 1:
			assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7}, r.Highlight.Indexes)
			assert.Equal(t, []string{"P", "o", "s", "t", "g", "r", "e", "S", "Q", "L"}, r.Highlight.Chars)
		case 2:
			assert.Empty(t, r.Highlight.Indexes, "matched on a keyword only")
		}
	}
}

func TestFetchIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})

	// FetchCollection is expected once
	require.NoError(t, f.session.Fetch(context.Background()))
	_, ok := f.session.State().(Ready)
	assert.True(t, ok)
}

func TestFetchFailureAllowsRetry(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	cause := errors.New("connection refused")

	gomock.InOrder(
		f.provider.EXPECT().FetchCollection(gomock.Any()).Return(nil, cause),
		f.provider.EXPECT().FetchCollection(gomock.Any()).Return(&catalog.Collection{Records: thirtyRecords()}, nil),
	)

	err := f.session.Fetch(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, NotFetched{IsFetching: false}, f.session.State())
	assert.Empty(t, f.session.Records())

	require.NoError(t, f.session.Fetch(context.Background()))
	assert.True(t, f.session.IsReady())
}

func TestFetchReportsInFlight(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.provider.EXPECT().FetchCollection(gomock.Any()).DoAndReturn(func(context.Context) (*catalog.Collection, error) {
		assert.Equal(t, NotFetched{IsFetching: true}, f.session.State())
		// a concurrent request while in flight does nothing
		assert.NoError(t, f.session.Fetch(context.Background()))
		return &catalog.Collection{Records: thirtyRecords()}, nil
	})

	require.NoError(t, f.session.Fetch(context.Background()))
	assert.True(t, f.session.IsReady())
}

func TestFetchAppliesSourceFilter(t *testing.T) {
	t.Parallel()

	f := newFixture(t, WithSourceFilter(&config.FilterConfig{
		Names: &config.NameFilterConfig{Exclude: []string{"tool *"}},
	}))
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})

	assert.Equal(t, 3, f.session.TotalCount())
	assert.False(t, f.session.HasMoreToLoad())
}

func TestFetchDefaultSortFollowsCaller(t *testing.T) {
	t.Parallel()

	anonymous := newFixture(t)
	anonymous.ready(t, &catalog.Collection{Records: thirtyRecords()})
	assert.Equal(t, sorting.ReferentCount, anonymous.session.Sort())
	assert.NotContains(t, anonymous.session.SortOptions(), sorting.MySoftware)
	assert.Equal(t, []int{3, 1, 2}, recordIDs(anonymous.session.Records())[:3])

	known := newFixture(t)
	known.ready(t, &catalog.Collection{
		Records:      thirtyRecords(),
		Declarations: []catalog.CallerDeclaration{{RecordID: 7, Type: catalog.DeclarationReferent}},
		CallerEmail:  "agent@example.gouv.fr",
	})
	assert.Equal(t, sorting.MySoftware, known.session.Sort())
	assert.Equal(t, "agent@example.gouv.fr", known.session.CallerEmail())
	assert.Equal(t, 7, known.session.Records()[0].ID)
}

func TestLoadMoreBeforeFetchIsKept(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.session.LoadMore()
	f.clock.Step(50 * time.Millisecond)

	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	assert.Equal(t, 48, f.session.DisplayCount())
}

func TestLoadMoreCoalescesRapidRequests(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})

	for range 5 {
		f.session.LoadMore()
		f.clock.Step(10 * time.Millisecond)
	}
	f.clock.Step(50 * time.Millisecond)
	assert.Eventually(t, func() bool { return f.session.DisplayCount() == 48 }, waitFor, tick)
	assert.Never(t, func() bool { return f.session.DisplayCount() > 48 }, 50*time.Millisecond, tick)
}

func TestSortBackupAndRestore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session
	ctx := context.Background()

	require.NoError(t, s.SetSort(sorting.UpdateTime))

	// pasted, commits at once
	require.NoError(t, s.SetQuery(ctx, "data"))
	assert.Equal(t, sorting.BestMatch, s.Sort())
	assert.Contains(t, s.SortOptions(), sorting.BestMatch)

	for _, text := range []string{"datab", "databa", "databas"} {
		require.NoError(t, s.SetQuery(ctx, text))
		f.clock.Step(750 * time.Millisecond)
	}
	assert.Eventually(t, func() bool { return s.QueryString() == "databas" }, waitFor, tick)
	assert.Equal(t, sorting.BestMatch, s.Sort())

	require.NoError(t, s.SetQuery(ctx, ""))
	assert.Equal(t, sorting.UpdateTime, s.Sort())
	assert.NotContains(t, s.SortOptions(), sorting.BestMatch)
}

func TestDebounceBoundary(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session
	ctx := context.Background()

	// below the minimum nothing is searched
	require.NoError(t, s.SetQuery(ctx, "m"))
	require.NoError(t, s.SetQuery(ctx, "ma"))
	assert.Equal(t, "ma", s.QueryString())
	assert.Nil(t, s.SearchResults())

	require.NoError(t, s.SetQuery(ctx, "mar"))
	f.clock.Step(749 * time.Millisecond)
	assert.Equal(t, "ma", s.QueryString())
	assert.Nil(t, s.SearchResults())

	f.clock.Step(time.Millisecond)
	assert.Eventually(t, func() bool { return s.QueryString() == "mar" }, waitFor, tick)
	assert.NotNil(t, s.SearchResults())

	// a ten character paste commits immediately
	require.NoError(t, s.SetQuery(ctx, "mar postgresql"))
	assert.Equal(t, "mar postgresql", s.QueryString())
}

func TestShortSearchLeavesNoSearchActive(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session

	require.NoError(t, s.SetQuery(context.Background(), "pg"))
	assert.Nil(t, s.SearchResults(), "no search active rather than an empty result")
	assert.Equal(t, sorting.ReferentCount, s.Sort())
	assert.Len(t, s.Records(), 30, "a non-empty query string is not paginated")
	for _, r := range s.Records() {
		assert.Nil(t, r.Highlight)
	}
}

func TestSupersededQueryNeverCommits(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session
	ctx := context.Background()

	require.NoError(t, s.SetQuery(ctx, "mar"))
	require.NoError(t, s.SetQuery(ctx, "mari"))
	f.clock.Step(500 * time.Millisecond)
	require.NoError(t, s.SetQuery(ctx, "maria"))
	f.clock.Step(500 * time.Millisecond)
	assert.Equal(t, "mar", s.QueryString(), "first pending update was discarded")

	f.clock.Step(250 * time.Millisecond)
	assert.Eventually(t, func() bool { return s.QueryString() == "maria" }, waitFor, tick)

	// typing back to the committed text drops the pending update
	require.NoError(t, s.SetQuery(ctx, "mariad"))
	require.NoError(t, s.SetQuery(ctx, "maria"))
	f.clock.Step(time.Second)
	assert.Never(t, func() bool { return s.QueryString() != "maria" }, 50*time.Millisecond, tick)
}

func TestCloseDropsPendingUpdates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session
	ctx := context.Background()

	require.NoError(t, s.SetQuery(ctx, "mar"))
	require.NoError(t, s.SetQuery(ctx, "mari"))
	s.LoadMore()
	s.Close()

	f.clock.Step(time.Hour)
	assert.Never(t, func() bool { return s.QueryString() != "mar" || s.DisplayCount() != 24 }, 50*time.Millisecond, tick)
	assert.ErrorIs(t, s.SetQuery(ctx, "postgres"), ErrSessionClosed)
	assert.ErrorIs(t, s.Fetch(ctx), ErrSessionClosed)
}

func TestCloseDuringFetch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	s := f.session

	started := make(chan struct{})
	release := make(chan struct{})
	f.provider.EXPECT().FetchCollection(gomock.Any()).
		DoAndReturn(func(context.Context) (*catalog.Collection, error) {
			close(started)
			<-release
			return &catalog.Collection{Records: thirtyRecords()}, nil
		})

	done := make(chan error, 1)
	go func() { done <- s.Fetch(context.Background()) }()

	<-started
	s.Close()
	close(release)

	assert.ErrorIs(t, <-done, ErrSessionClosed)
	assert.False(t, s.IsReady())
	assert.Equal(t, NotFetched{}, s.State())
}

func TestFlushCommitsPending(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session

	require.NoError(t, s.SetQuery(context.Background(), "mar"))
	require.NoError(t, s.SetQuery(context.Background(), "mari"))
	s.LoadMore()
	s.Flush()

	assert.Equal(t, "mari", s.QueryString())
	assert.Equal(t, 48, s.DisplayCount())
}

func TestEmptyQueryResetsDisplayCount(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	s := f.session
	ctx := context.Background()

	s.LoadMore()
	s.Flush()
	require.Equal(t, 48, s.DisplayCount())

	require.NoError(t, s.SetQuery(ctx, "pg"))
	assert.Equal(t, 48, s.DisplayCount())
	require.NoError(t, s.SetQuery(ctx, ""))
	assert.Equal(t, 24, s.DisplayCount())
}

func TestSetQueryMalformed(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: thirtyRecords()})

	require.NoError(t, f.session.SetQuery(context.Background(), "pg"))
	err := f.session.SetQuery(context.Background(), `{"search":`)
	assert.ErrorIs(t, err, query.ErrMalformedQuery)
	assert.Equal(t, "pg", f.session.QueryString())
}

func TestSetQueryReference(t *testing.T) {
	t.Parallel()

	records := thirtyRecords()
	parentID := 1
	records[1].ParentID = &parentID

	f := newFixture(t)
	f.ready(t, &catalog.Collection{Records: records})
	s := f.session

	require.NoError(t, s.SetQuery(context.Background(), `{"search":"","referenceId":1}`))
	assert.ElementsMatch(t, []int{1, 2}, recordIDs(s.Records()))
	assert.Nil(t, s.SearchResults())

	require.NoError(t, s.SetQuery(context.Background(), ""))
	assert.Equal(t, 24, len(s.Records()))
}

func TestSetQueryBeforeFetch(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	require.NoError(t, f.session.SetQuery(context.Background(), "mariadb"))
	assert.Equal(t, NotFetched{QueryString: "mariadb"}, f.session.State())

	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	assert.Equal(t, sorting.BestMatch, f.session.Sort())
	assert.Equal(t, []int{3}, recordIDs(f.session.Records()))
}
