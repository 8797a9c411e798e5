package catalog

import (
	"fmt"
	"time"
)

// RecordOption is a function that configures an APIRecord for testing
type RecordOption func(*APIRecord)

// testEpoch is the reference time used by test builders
var testEpoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewTestAPIRecord creates an APIRecord for testing with default values
// and applies any provided options
func NewTestAPIRecord(id int, name string, opts ...RecordOption) APIRecord {
	rec := APIRecord{
		ID:          id,
		Name:        name,
		Description: fmt.Sprintf("Test description for %s", name),
		AddedTime:   testEpoch.Add(time.Duration(id) * time.Hour),
		UpdateTime:  testEpoch.Add(time.Duration(id) * time.Hour),
		Kind:        Kind{Type: KindCloud},
		CountsByOrganization: map[string]OrganizationCounts{
			"other": {UserCount: 1},
		},
		Categories: []string{},
		Keywords:   []string{},
	}

	for _, opt := range opts {
		opt(&rec)
	}

	return rec
}

// NewTestRecord creates a normalized Record for testing
func NewTestRecord(id int, name string, opts ...RecordOption) *Record {
	return Normalize([]APIRecord{NewTestAPIRecord(id, name, opts...)}, nil)[0]
}

// WithDescription sets the record description
func WithDescription(description string) RecordOption {
	return func(rec *APIRecord) {
		rec.Description = description
	}
}

// WithKind sets the record kind
func WithKind(kind Kind) RecordOption {
	return func(rec *APIRecord) {
		rec.Kind = kind
	}
}

// WithDesktopOS sets a desktop/mobile kind with the given OS flags
func WithDesktopOS(os OperatingSystems) RecordOption {
	return func(rec *APIRecord) {
		rec.Kind = Kind{Type: KindDesktopMobile, OS: os}
	}
}

// WithOrganizationCounts replaces the per-organization counts
func WithOrganizationCounts(counts map[string]OrganizationCounts) RecordOption {
	return func(rec *APIRecord) {
		rec.CountsByOrganization = counts
	}
}

// WithCategories sets the record categories
func WithCategories(categories ...string) RecordOption {
	return func(rec *APIRecord) {
		rec.Categories = categories
	}
}

// WithKeywords sets the record keywords
func WithKeywords(keywords ...string) RecordOption {
	return func(rec *APIRecord) {
		rec.Keywords = keywords
	}
}

// WithSimilarNames sets the names of similar records
func WithSimilarNames(names ...string) RecordOption {
	return func(rec *APIRecord) {
		rec.SimilarNames = names
	}
}

// WithParentID sets an in-catalog parent
func WithParentID(id int) RecordOption {
	return func(rec *APIRecord) {
		rec.ParentID = &id
	}
}

// WithExternalParent sets a parent living outside of the catalog
func WithExternalParent(label, url string) RecordOption {
	return func(rec *APIRecord) {
		rec.ExternalParent = &ExternalParent{Label: label, URL: url}
	}
}

// WithStoredPrerogatives sets the stored prerogatives
func WithStoredPrerogatives(p StoredPrerogatives) RecordOption {
	return func(rec *APIRecord) {
		rec.Prerogatives = p
	}
}

// WithTestURL sets the demo URL
func WithTestURL(url string) RecordOption {
	return func(rec *APIRecord) {
		rec.TestURL = url
	}
}

// WithTimes sets the added and update times
func WithTimes(added, updated time.Time) RecordOption {
	return func(rec *APIRecord) {
		rec.AddedTime = added
		rec.UpdateTime = updated
	}
}

// WithLatestVersion sets the explicit latest version
func WithLatestVersion(semver string, published time.Time) RecordOption {
	return func(rec *APIRecord) {
		rec.LatestVersion = &LatestVersion{SemVer: semver, PublicationTime: published}
	}
}

// WithVersions sets the version history
func WithVersions(versions ...LatestVersion) RecordOption {
	return func(rec *APIRecord) {
		rec.Versions = versions
	}
}

// WithDereferenced marks the record as dereferenced
func WithDereferenced() RecordOption {
	return func(rec *APIRecord) {
		rec.Dereferenced = true
	}
}
