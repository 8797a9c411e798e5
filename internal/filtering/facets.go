package filtering

import (
	"cmp"
	"slices"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/search"
)

// OtherValue is the sentinel organization and category always listed last
const OtherValue = "other"

// Environment is a deployment environment a record can be filtered on
type Environment string

const (
	EnvironmentLinux   Environment = "linux"
	EnvironmentWindows Environment = "windows"
	EnvironmentMac     Environment = "mac"
	EnvironmentAndroid Environment = "android"
	EnvironmentIOS     Environment = "ios"
	EnvironmentBrowser Environment = "browser"
	EnvironmentStack   Environment = "stack"
)

// Environments lists every environment in declaration order
var Environments = []Environment{
	EnvironmentLinux,
	EnvironmentWindows,
	EnvironmentMac,
	EnvironmentAndroid,
	EnvironmentIOS,
	EnvironmentBrowser,
	EnvironmentStack,
}

// ParseEnvironment returns the environment with the given name
func ParseEnvironment(name string) (Environment, bool) {
	env := Environment(name)
	return env, slices.Contains(Environments, env)
}

// Matches reports whether a record can run in the environment
func (e Environment) Matches(rec *catalog.Record) bool {
	os := rec.Kind.OS
	switch e {
	case EnvironmentLinux:
		return rec.Kind.IsDesktopMobile() && os.Linux
	case EnvironmentWindows:
		return rec.Kind.IsDesktopMobile() && os.Windows
	case EnvironmentMac:
		return rec.Kind.IsDesktopMobile() && os.Mac
	case EnvironmentAndroid:
		return rec.Kind.IsDesktopMobile() && os.Android
	case EnvironmentIOS:
		return rec.Kind.IsDesktopMobile() && os.IOS
	case EnvironmentBrowser:
		return rec.Kind.Type == catalog.KindCloud
	case EnvironmentStack:
		return rec.Kind.Type == catalog.KindStack
	default:
		return false
	}
}

// Prerogative is a boolean capability a record can be filtered on
type Prerogative string

const (
	PrerogativeSupportContract      Prerogative = "isPresentInSupportContract"
	PrerogativeFrenchPublicServices Prerogative = "isFromFrenchPublicServices"
	PrerogativeRgaa                 Prerogative = "doRespectRgaa"
	PrerogativeInstallable          Prerogative = "isInstallableOnUserComputer"
	PrerogativeMobileApp            Prerogative = "isAvailableAsMobileApp"
	PrerogativeTestable             Prerogative = "isTestable"
)

// storedPrerogatives are delivered with the record, the others are derived
var storedPrerogatives = []Prerogative{
	PrerogativeSupportContract,
	PrerogativeFrenchPublicServices,
	PrerogativeRgaa,
}

// Prerogatives lists every prerogative in declaration order
var Prerogatives = append(slices.Clone(storedPrerogatives),
	PrerogativeInstallable,
	PrerogativeMobileApp,
	PrerogativeTestable,
)

// ParsePrerogative returns the prerogative with the given name
func ParsePrerogative(name string) (Prerogative, bool) {
	p := Prerogative(name)
	return p, slices.Contains(Prerogatives, p)
}

// HeldBy reports whether the record has the prerogative
func (p Prerogative) HeldBy(rec *catalog.Record) bool {
	all := rec.AllPrerogatives()
	switch p {
	case PrerogativeSupportContract:
		return all.IsPresentInSupportContract
	case PrerogativeFrenchPublicServices:
		return all.IsFromFrenchPublicServices
	case PrerogativeRgaa:
		return all.DoRespectRgaa
	case PrerogativeInstallable:
		return all.IsInstallableOnUserComputer
	case PrerogativeMobileApp:
		return all.IsAvailableAsMobileApp
	case PrerogativeTestable:
		return all.IsTestable
	default:
		return false
	}
}

// Criteria holds the active filters. Zero values mean the filter is inactive.
type Criteria struct {
	// Search is the ranked result of the active search, nil when no search is active
	Search       []search.Hit
	ReferenceID  *int
	Organization string
	Category     string
	Environment  Environment
	Prerogatives []Prerogative
}

// IsZero reports whether no filter is active
func (c Criteria) IsZero() bool {
	return c.Search == nil && c.ReferenceID == nil && c.Organization == "" &&
		c.Category == "" && c.Environment == "" && len(c.Prerogatives) == 0
}

// Match is a record that passed the filters
type Match struct {
	Record *catalog.Record
	// Positions are the highlighted display name runes
	Positions []int
	// Matched is true when the record was selected by an active search
	Matched bool
}

// Option is a facet value with the number of records it would select
type Option struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetEngine narrows a collection with the active filters and computes the
// per-facet option counts
type FacetEngine interface {
	// Filter applies every active filter in order: search, reference,
	// organization, category, environment, then each prerogative
	Filter(records []*catalog.Record, criteria Criteria) []Match

	// OrganizationOptions counts records per organization, ignoring the organization filter
	OrganizationOptions(records []*catalog.Record, criteria Criteria) []Option

	// CategoryOptions counts records per category, ignoring the category filter
	CategoryOptions(records []*catalog.Record, criteria Criteria) []Option

	// EnvironmentOptions counts records per environment, ignoring the environment filter
	EnvironmentOptions(records []*catalog.Record, criteria Criteria) []Option

	// PrerogativeOptions counts records per prerogative, ignoring the prerogative filters
	PrerogativeOptions(records []*catalog.Record, criteria Criteria) []Option
}

type defaultFacetEngine struct{}

var _ FacetEngine = (*defaultFacetEngine)(nil)

// NewDefaultFacetEngine creates a FacetEngine
func NewDefaultFacetEngine() FacetEngine {
	return &defaultFacetEngine{}
}

type facet int

const (
	facetNone facet = iota
	facetOrganization
	facetCategory
	facetEnvironment
	facetPrerogative
)

func (*defaultFacetEngine) Filter(records []*catalog.Record, criteria Criteria) []Match {
	return apply(records, criteria, facetNone)
}

// apply runs the filter pipeline, skipping the given facet
func apply(records []*catalog.Record, criteria Criteria, skip facet) []Match {
	var matches []Match
	if criteria.Search != nil {
		matches = bySearch(records, criteria.Search)
	} else {
		matches = make([]Match, 0, len(records))
		for _, rec := range records {
			matches = append(matches, Match{Record: rec})
		}
	}

	if criteria.ReferenceID != nil {
		id := *criteria.ReferenceID
		matches = narrow(matches, func(rec *catalog.Record) bool { return rec.MatchesReference(id) })
	}
	if criteria.Organization != "" && skip != facetOrganization {
		matches = narrow(matches, func(rec *catalog.Record) bool { return rec.HasOrganization(criteria.Organization) })
	}
	if criteria.Category != "" && skip != facetCategory {
		matches = narrow(matches, func(rec *catalog.Record) bool { return rec.HasCategory(criteria.Category) })
	}
	if criteria.Environment != "" && skip != facetEnvironment {
		matches = narrow(matches, criteria.Environment.Matches)
	}
	if skip != facetPrerogative {
		for _, p := range criteria.Prerogatives {
			matches = narrow(matches, p.HeldBy)
		}
	}
	return matches
}

// bySearch keeps the records present in the hits, in hit order
func bySearch(records []*catalog.Record, hits []search.Hit) []Match {
	byID := make(map[int]*catalog.Record, len(records))
	for _, rec := range records {
		byID[rec.ID] = rec
	}

	matches := make([]Match, 0, len(hits))
	for _, hit := range hits {
		rec, ok := byID[hit.ID]
		if !ok {
			continue
		}
		matches = append(matches, Match{Record: rec, Positions: hit.Positions, Matched: true})
	}
	return matches
}

func narrow(matches []Match, keep func(*catalog.Record) bool) []Match {
	out := make([]Match, 0, len(matches))
	for _, m := range matches {
		if keep(m.Record) {
			out = append(out, m)
		}
	}
	return out
}

func (*defaultFacetEngine) OrganizationOptions(records []*catalog.Record, criteria Criteria) []Option {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, org := range rec.Organizations {
			counts[org] = 0
		}
	}
	for _, m := range apply(records, criteria, facetOrganization) {
		for _, org := range m.Record.Organizations {
			counts[org]++
		}
	}
	return sortedWithOtherLast(counts)
}

func (*defaultFacetEngine) CategoryOptions(records []*catalog.Record, criteria Criteria) []Option {
	counts := make(map[string]int)
	for _, m := range apply(records, criteria, facetCategory) {
		for _, category := range m.Record.Categories {
			counts[category]++
		}
	}
	return sortedWithOtherLast(counts)
}

func (*defaultFacetEngine) EnvironmentOptions(records []*catalog.Record, criteria Criteria) []Option {
	present := make(map[Environment]bool)
	for _, rec := range records {
		for _, env := range Environments {
			if env.Matches(rec) {
				present[env] = true
			}
		}
	}

	counts := make(map[Environment]int)
	for _, m := range apply(records, criteria, facetEnvironment) {
		for _, env := range Environments {
			if env.Matches(m.Record) {
				counts[env]++
			}
		}
	}

	options := make([]Option, 0, len(present))
	for _, env := range Environments {
		if present[env] {
			options = append(options, Option{Value: string(env), Count: counts[env]})
		}
	}
	sortByCountStable(options)
	return options
}

func (*defaultFacetEngine) PrerogativeOptions(records []*catalog.Record, criteria Criteria) []Option {
	offered := make(map[Prerogative]bool)
	for _, rec := range records {
		for _, p := range storedPrerogatives {
			if p.HeldBy(rec) {
				offered[p] = true
			}
		}
	}
	for _, p := range Prerogatives[len(storedPrerogatives):] {
		offered[p] = true
	}

	counts := make(map[Prerogative]int)
	for _, m := range apply(records, criteria, facetPrerogative) {
		for _, p := range Prerogatives {
			if p.HeldBy(m.Record) {
				counts[p]++
			}
		}
	}

	options := make([]Option, 0, len(offered))
	for _, p := range Prerogatives {
		if offered[p] {
			options = append(options, Option{Value: string(p), Count: counts[p]})
		}
	}
	sortByCountStable(options)
	return options
}

// sortedWithOtherLast orders options by count desc then value asc, with the
// "other" sentinel pinned last. Zero counts are kept when present in counts.
func sortedWithOtherLast(counts map[string]int) []Option {
	options := make([]Option, 0, len(counts))
	for value, count := range counts {
		options = append(options, Option{Value: value, Count: count})
	}
	slices.SortFunc(options, func(a, b Option) int {
		aOther, bOther := a.Value == OtherValue, b.Value == OtherValue
		switch {
		case aOther && !bOther:
			return 1
		case !aOther && bOther:
			return -1
		}
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return options
}

func sortByCountStable(options []Option) {
	slices.SortStableFunc(options, func(a, b Option) int {
		return cmp.Compare(b.Count, a.Count)
	})
}
