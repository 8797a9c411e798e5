package catalog

import (
	"maps"
	"slices"
	"strings"
	"unicode/utf8"
)

// Refresh recomputes the derived fields of the record: usage totals,
// organizations and the search blob
func (r *Record) Refresh() {
	r.UserCount = 0
	r.ReferentCount = 0
	for org, counts := range r.CountsByOrganization {
		if counts.UserCount < 0 {
			counts.UserCount = 0
		}
		if counts.ReferentCount < 0 {
			counts.ReferentCount = 0
		}
		r.CountsByOrganization[org] = counts
		r.UserCount += counts.UserCount
		r.ReferentCount += counts.ReferentCount
	}
	r.Organizations = slices.Sorted(maps.Keys(r.CountsByOrganization))
	r.Search = buildSearchBlob(r)
}

// buildSearchBlob concatenates the display name with keywords, similar record
// names and the parent name: "name (kw1, kw2, similar, parent)"
func buildSearchBlob(r *Record) string {
	terms := make([]string, 0, len(r.Keywords)+len(r.SimilarNames)+1)
	terms = append(terms, r.Keywords...)
	terms = append(terms, r.SimilarNames...)
	if r.Parent != nil && r.Parent.Name != "" {
		terms = append(terms, r.Parent.Name)
	}
	return r.Name + " (" + strings.Join(terms, ", ") + ")"
}

// AllPrerogatives returns the stored prerogatives together with the derived ones
func (r *Record) AllPrerogatives() Prerogatives {
	os := r.Kind.OS
	desktop := r.Kind.IsDesktopMobile()
	return Prerogatives{
		StoredPrerogatives:          r.Prerogatives,
		IsInstallableOnUserComputer: desktop && (os.Windows || os.Linux || os.Mac),
		IsAvailableAsMobileApp:      desktop && (os.Android || os.IOS),
		IsTestable:                  r.TestURL != "",
	}
}

// HasOrganization reports whether the record is used in the given organization
func (r *Record) HasOrganization(org string) bool {
	_, ok := r.CountsByOrganization[org]
	return ok
}

// HasCategory reports whether the record belongs to the given category
func (r *Record) HasCategory(category string) bool {
	return slices.Contains(r.Categories, category)
}

// MatchesReference reports whether the record is the referenced record or
// one of its in-catalog children
func (r *Record) MatchesReference(id int) bool {
	if r.ID == id {
		return true
	}
	return r.Parent != nil && r.Parent.InCatalog && r.Parent.ID == id
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	c.Categories = slices.Clone(r.Categories)
	c.Keywords = slices.Clone(r.Keywords)
	c.SimilarNames = slices.Clone(r.SimilarNames)
	c.Organizations = slices.Clone(r.Organizations)
	c.CountsByOrganization = maps.Clone(r.CountsByOrganization)
	if r.Parent != nil {
		p := *r.Parent
		c.Parent = &p
	}
	if r.LatestVersion != nil {
		v := *r.LatestVersion
		c.LatestVersion = &v
	}
	if r.Declaration != nil {
		d := *r.Declaration
		c.Declaration = &d
	}
	return &c
}

// ToExternal projects the record for consumers. When matched is true the
// projection carries a highlight over the display name built from positions.
func (r *Record) ToExternal(positions []int, matched bool) ExternalRecord {
	ext := ExternalRecord{
		ID:            r.ID,
		Name:          r.Name,
		Description:   r.Description,
		LogoURL:       r.LogoURL,
		UserCount:     r.UserCount,
		ReferentCount: r.ReferentCount,
		TestURL:       r.TestURL,
		Prerogatives:  r.AllPrerogatives(),
	}
	if r.LatestVersion != nil {
		v := *r.LatestVersion
		ext.LatestVersion = &v
	}
	if r.Parent != nil {
		p := *r.Parent
		ext.Parent = &p
	}
	if r.Declaration != nil {
		d := *r.Declaration
		ext.Declaration = &d
	}
	if matched {
		ext.Highlight = &Highlight{
			Chars:   splitChars(r.Name),
			Indexes: slices.Clone(positions),
		}
		if ext.Highlight.Indexes == nil {
			ext.Highlight.Indexes = []int{}
		}
	}
	return ext
}

func splitChars(s string) []string {
	chars := make([]string, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		chars = append(chars, string(r))
	}
	return chars
}
