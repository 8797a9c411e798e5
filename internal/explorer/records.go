package explorer

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"go.opentelemetry.io/otel/trace"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/otel"
)

// Upsert replaces the record with the same id in place, or appends it when
// absent. Derived fields are regenerated from the record's constituents.
// Upsert does nothing until the collection is loaded.
func (s *Session) Upsert(ctx context.Context, record *catalog.Record) error {
	if record == nil {
		return fmt.Errorf("record is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if !s.ready {
		slog.Debug("Ignoring upsert before fetch", "record_id", record.ID)
		return nil
	}

	rec := record.Clone()
	rec.Refresh()

	records := slices.Clone(s.records)
	if i := s.indexOfLocked(rec.ID); i >= 0 {
		records[i] = rec
	} else {
		records = append(records, rec)
	}
	if rec.Parent != nil && rec.Parent.InCatalog {
		var parent *catalog.Record
		if i := slices.IndexFunc(records, func(r *catalog.Record) bool { return r.ID == rec.Parent.ID }); i >= 0 {
			parent = records[i]
		}
		linkParent(rec, parent)
		rec.Refresh()
	}
	relinkChildren(records, rec.ID, rec)
	return s.replaceRecordsLocked(ctx, records)
}

// Remove drops the record with the given id from the collection
func (s *Session) Remove(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	return s.removeLocked(ctx, id)
}

func (s *Session) removeLocked(ctx context.Context, id int) error {
	i := s.indexOfLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", catalog.ErrRecordNotFound, id)
	}
	records := slices.Delete(slices.Clone(s.records), i, i+1)
	relinkChildren(records, id, nil)
	return s.replaceRecordsLocked(ctx, records)
}

// relinkChildren points the in-catalog children of id at parent, or detaches
// them when parent is nil. Changed children are cloned into records.
func relinkChildren(records []*catalog.Record, id int, parent *catalog.Record) {
	for i, r := range records {
		if r.ID == id || !r.MatchesReference(id) {
			continue
		}
		if parent != nil && r.Parent.Name == parent.Name {
			continue
		}
		child := r.Clone()
		linkParent(child, parent)
		child.Refresh()
		records[i] = child
	}
}

// linkParent keeps the parent name in sync with the parent record. Without
// one the reference is kept by name only.
func linkParent(rec, parent *catalog.Record) {
	if parent == nil {
		rec.Parent = &catalog.ParentRef{Name: rec.Parent.Name}
		return
	}
	rec.Parent.Name = parent.Name
}

// Dereference asks the provider to dereference the record, then removes it
// from the collection. The session reports IsProcessing while the provider
// call is in flight.
func (s *Session) Dereference(ctx context.Context, id int) (err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "explorer.Dereference",
		trace.WithAttributes(otel.AttrRecordID.Int(id)),
	)
	defer func() { otel.End(span, err) }()

	if err := s.beginMutation(id); err != nil {
		return err
	}
	mutateErr := s.provider.MutateRecord(ctx, id, catalog.OperationDereference)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing--
	if mutateErr != nil {
		return fmt.Errorf("failed to dereference record %d: %w", id, mutateErr)
	}
	if s.closed {
		return nil
	}
	// another call may have removed it while the provider was busy
	if s.indexOfLocked(id) < 0 {
		return nil
	}
	slog.Info("Dereferenced record", "catalog", s.catalogName, "record_id", id)
	return s.removeLocked(ctx, id)
}

// UpdateDeclaration records the caller's relationship with a record through
// the provider and mirrors it on the local record
func (s *Session) UpdateDeclaration(ctx context.Context, id int, decl catalog.Declaration) (err error) {
	ctx, span := otel.StartSpan(ctx, s.tracer, "explorer.UpdateDeclaration",
		trace.WithAttributes(otel.AttrRecordID.Int(id)),
	)
	defer func() { otel.End(span, err) }()

	if err := s.beginMutation(id); err != nil {
		return err
	}
	updateErr := s.provider.UpdateCallerDeclaration(ctx, id, decl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.processing--
	if updateErr != nil {
		return fmt.Errorf("failed to update declaration of record %d: %w", id, updateErr)
	}
	if s.closed {
		return nil
	}

	i := s.indexOfLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: %d", catalog.ErrRecordNotFound, id)
	}
	rec := s.records[i].Clone()
	d := decl
	rec.Declaration = &d

	records := slices.Clone(s.records)
	records[i] = rec
	return s.replaceRecordsLocked(ctx, records)
}

// beginMutation checks the record exists and marks the session as processing
func (s *Session) beginMutation(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.indexOfLocked(id) < 0 {
		return fmt.Errorf("%w: %d", catalog.ErrRecordNotFound, id)
	}
	s.processing++
	return nil
}

// replaceRecordsLocked installs a new collection snapshot. Records are never
// modified once installed, so earlier snapshots stay valid. Caller must hold s.mu.
func (s *Session) replaceRecordsLocked(ctx context.Context, records []*catalog.Record) error {
	s.records = records
	s.version++
	s.metrics.RecordRecordsTotal(ctx, s.catalogName, int64(len(records)))
	return s.refreshSearchLocked(ctx)
}

func (s *Session) indexOfLocked(id int) int {
	return slices.IndexFunc(s.records, func(r *catalog.Record) bool { return r.ID == id })
}
