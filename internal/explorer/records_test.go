package explorer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
)

func TestUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("ignored before fetch", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		require.NoError(t, f.session.Upsert(ctx, catalog.NewTestRecord(99, "Late")))
		assert.Equal(t, NotFetched{}, f.session.State())
	})

	t.Run("appends and replaces in place", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})
		s := f.session

		require.NoError(t, s.Upsert(ctx, catalog.NewTestRecord(31, "Grist")))
		ready := s.State().(Ready)
		require.Len(t, ready.Records, 31)
		assert.Equal(t, 31, ready.Records[30].ID)

		replacement := catalog.NewTestRecord(3, "MariaDB Server", catalog.WithKeywords("postgres"))
		require.NoError(t, s.Upsert(ctx, replacement))
		ready = s.State().(Ready)
		require.Len(t, ready.Records, 31)
		assert.Equal(t, "MariaDB Server", ready.Records[2].Name)
		assert.Contains(t, ready.Records[2].Search, "postgres")
		assert.NotSame(t, replacement, ready.Records[2], "the session keeps its own copy")
	})

	t.Run("active search sees the new record", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})
		s := f.session

		require.NoError(t, s.SetQuery(ctx, "postgres"))
		assert.ElementsMatch(t, []int{1, 2}, recordIDs(s.Records()))

		require.NoError(t, s.Upsert(ctx, catalog.NewTestRecord(31, "Postgres Operator")))
		assert.ElementsMatch(t, []int{1, 2, 31}, recordIDs(s.Records()))
	})

	t.Run("snapshots stay valid", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		before := f.session.State().(Ready)
		require.NoError(t, f.session.Upsert(ctx, catalog.NewTestRecord(1, "Postgres")))
		assert.Equal(t, "PostgreSQL", before.Records[0].Name)
	})
}

func TestRemove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	f := newFixture(t)

	err := f.session.Remove(ctx, 1)
	assert.ErrorIs(t, err, catalog.ErrRecordNotFound, "nothing to remove before fetch")

	f.ready(t, &catalog.Collection{Records: thirtyRecords()})
	require.NoError(t, f.session.Remove(ctx, 1))
	assert.Equal(t, 29, f.session.TotalCount())

	err = f.session.Remove(ctx, 1)
	assert.ErrorIs(t, err, catalog.ErrRecordNotFound)
	assert.Equal(t, 29, f.session.TotalCount())
}

func TestDereference(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("removes the record", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		f.provider.EXPECT().
			MutateRecord(gomock.Any(), 2, catalog.OperationDereference).
			DoAndReturn(func(context.Context, int, catalog.Operation) error {
				assert.True(t, f.session.State().(Ready).IsProcessing)
				return nil
			})

		require.NoError(t, f.session.Dereference(ctx, 2))
		ready := f.session.State().(Ready)
		assert.False(t, ready.IsProcessing)
		assert.Len(t, ready.Records, 29)
	})

	t.Run("unknown record never reaches the provider", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		err := f.session.Dereference(ctx, 404)
		assert.ErrorIs(t, err, catalog.ErrRecordNotFound)
	})

	t.Run("provider failure keeps the record", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		cause := errors.New("forbidden")
		f.provider.EXPECT().MutateRecord(gomock.Any(), 2, catalog.OperationDereference).Return(cause)

		err := f.session.Dereference(ctx, 2)
		assert.ErrorIs(t, err, cause)
		ready := f.session.State().(Ready)
		assert.False(t, ready.IsProcessing)
		assert.Len(t, ready.Records, 30)
	})
}

// familyRecords holds a parent with one in-catalog child
func familyRecords() []catalog.APIRecord {
	return []catalog.APIRecord{
		catalog.NewTestAPIRecord(1, "Thunderbird", catalog.WithKeywords("mail")),
		catalog.NewTestAPIRecord(2, "Betterbird", catalog.WithParentID(1)),
		catalog.NewTestAPIRecord(3, "Tool 03"),
	}
}

func TestParentChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("renamed parent is searchable through its child", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: familyRecords()})
		s := f.session

		before := s.State().(Ready).Records[1]
		require.NoError(t, s.Upsert(ctx, catalog.NewTestRecord(1, "Mailstorm")))

		child := s.State().(Ready).Records[1]
		require.NotNil(t, child.Parent)
		assert.Equal(t, "Mailstorm", child.Parent.Name)
		assert.True(t, child.Parent.InCatalog)
		assert.Contains(t, child.Search, "Mailstorm")
		assert.Equal(t, "Thunderbird", before.Parent.Name, "earlier snapshots are untouched")

		require.NoError(t, s.SetQuery(ctx, "mailstorm"))
		assert.ElementsMatch(t, []int{1, 2}, recordIDs(s.Records()))
		require.NoError(t, s.SetQuery(ctx, "thunderbird"))
		s.Flush()
		assert.Equal(t, "thunderbird", s.QueryString())
		assert.Empty(t, s.Records())
	})

	t.Run("upserted child takes the current parent name", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: familyRecords()})
		s := f.session

		orphan := &catalog.Record{ID: 4, Name: "Icedove",
			Parent: &catalog.ParentRef{Name: "Stale", InCatalog: true, ID: 1}}
		require.NoError(t, s.Upsert(ctx, orphan))

		ready := s.State().(Ready)
		require.Len(t, ready.Records, 4)
		assert.Equal(t, "Thunderbird", ready.Records[3].Parent.Name)
		assert.NotContains(t, ready.Records[3].Search, "Stale")
		assert.Equal(t, "Stale", orphan.Parent.Name, "the caller's record is left alone")
	})

	t.Run("upserted child of a missing parent is detached", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: familyRecords()})
		s := f.session

		require.NoError(t, s.Upsert(ctx, &catalog.Record{ID: 4, Name: "Icedove",
			Parent: &catalog.ParentRef{Name: "Gone", InCatalog: true, ID: 404}}))

		parent := s.State().(Ready).Records[3].Parent
		require.NotNil(t, parent)
		assert.Equal(t, catalog.ParentRef{Name: "Gone"}, *parent)
	})

	t.Run("removed parent detaches its children", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: familyRecords()})
		s := f.session

		require.NoError(t, s.Remove(ctx, 1))

		ready := s.State().(Ready)
		require.Len(t, ready.Records, 2)
		child := ready.Records[0]
		require.NotNil(t, child.Parent)
		assert.False(t, child.Parent.InCatalog)
		assert.Equal(t, "Thunderbird", child.Parent.Name)

		require.NoError(t, s.SetQuery(ctx, `{"search":"","referenceId":1}`))
		assert.Empty(t, s.Records())
	})

	t.Run("dereferenced parent detaches its children", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: familyRecords()})
		s := f.session

		f.provider.EXPECT().MutateRecord(gomock.Any(), 1, catalog.OperationDereference).Return(nil)
		require.NoError(t, s.Dereference(ctx, 1))

		child := s.State().(Ready).Records[0]
		assert.Equal(t, 2, child.ID)
		assert.False(t, child.MatchesReference(1))
	})
}

func TestUpdateDeclaration(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("mirrors the declaration", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{
			Records:      thirtyRecords(),
			Declarations: []catalog.CallerDeclaration{},
			CallerEmail:  "agent@example.gouv.fr",
		})

		decl := catalog.Declaration{IsUser: true}
		f.provider.EXPECT().UpdateCallerDeclaration(gomock.Any(), 12, decl).Return(nil)

		require.NoError(t, f.session.UpdateDeclaration(ctx, 12, decl))
		first := f.session.Records()[0]
		assert.Equal(t, 12, first.ID, "my software sort puts it first")
		require.NotNil(t, first.Declaration)
		assert.True(t, first.Declaration.IsUser)
	})

	t.Run("provider failure changes nothing", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		cause := errors.New("server error")
		f.provider.EXPECT().UpdateCallerDeclaration(gomock.Any(), 12, gomock.Any()).Return(cause)

		err := f.session.UpdateDeclaration(ctx, 12, catalog.Declaration{IsReferent: true})
		assert.ErrorIs(t, err, cause)
		assert.Nil(t, f.session.State().(Ready).Records[11].Declaration)
	})

	t.Run("unknown record", func(t *testing.T) {
		t.Parallel()

		f := newFixture(t)
		f.ready(t, &catalog.Collection{Records: thirtyRecords()})

		err := f.session.UpdateDeclaration(ctx, 404, catalog.Declaration{IsUser: true})
		assert.ErrorIs(t, err, catalog.ErrRecordNotFound)
	})
}
