// Package query parses and serializes the explorer query string.
//
// A query string is either plain free-text search, or a structured token
// starting with '{' that carries an explicit reference id:
//
//	postgres
//	{"search":"postgres","referenceId":12}
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedQuery is returned when a structured query token cannot be decoded
var ErrMalformedQuery = errors.New("malformed query")

// structuredMarker is the first character of a structured query token
const structuredMarker = "{"

// Query is the typed form of a query string
type Query struct {
	Search      string `json:"search"`
	ReferenceID *int   `json:"referenceId,omitempty"`
}

// IsEmpty reports whether the query has no search text and no reference
func (q Query) IsEmpty() bool {
	return q.Search == "" && q.ReferenceID == nil
}

// HasReference reports whether a direct reference lookup is active
func (q Query) HasReference() bool {
	return q.ReferenceID != nil
}

// Parse converts a query string into a Query. Strings that do not start with
// the structured marker are free-text searches; structured tokens that fail
// to decode return ErrMalformedQuery.
func Parse(queryString string) (Query, error) {
	if !strings.HasPrefix(queryString, structuredMarker) {
		return Query{Search: queryString}, nil
	}

	var q Query
	dec := json.NewDecoder(strings.NewReader(queryString))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&q); err != nil {
		return Query{}, fmt.Errorf("%w: %v", ErrMalformedQuery, err)
	}
	if dec.More() {
		return Query{}, fmt.Errorf("%w: trailing data after token", ErrMalformedQuery)
	}
	return q, nil
}

// Serialize converts a Query into its string form. The empty query becomes
// the empty string. A query with a reference serializes to its search text
// only: the reference is owned by the explorer state, not by the string.
func Serialize(q Query) string {
	if q.IsEmpty() {
		return ""
	}
	if q.HasReference() {
		return q.Search
	}

	data, err := json.Marshal(q)
	if err != nil {
		// Query only holds a string and an int pointer
		panic(fmt.Sprintf("failed to marshal query: %v", err))
	}
	return string(data)
}

// Equivalent reports whether two queries carry the same search text and
// the same reference
func Equivalent(a, b Query) bool {
	return a.Search == b.Search && SameReference(a.ReferenceID, b.ReferenceID)
}

// SameReference reports whether two optional reference ids are equal
func SameReference(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
