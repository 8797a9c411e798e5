package explorer

import (
	"slices"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
)

// State is a snapshot of the session lifecycle, either NotFetched or Ready
type State interface {
	isState()
}

// NotFetched is the state before the collection has been loaded
type NotFetched struct {
	IsFetching  bool
	QueryString string
}

// Ready is the state once the collection has been loaded. Records holds
// the canonical collection in collection order.
type Ready struct {
	Records      []*catalog.Record
	QueryString  string
	IsProcessing bool
	DisplayCount int
}

func (NotFetched) isState() {}
func (Ready) isState()      {}

// State returns a snapshot of the current state. Records of a Ready
// snapshot must not be modified.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return NotFetched{IsFetching: s.fetching, QueryString: s.queryString}
	}
	return Ready{
		Records:      slices.Clone(s.records),
		QueryString:  s.queryString,
		IsProcessing: s.processing > 0,
		DisplayCount: s.displayCount,
	}
}

// IsReady reports whether the collection has been loaded
func (s *Session) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}
