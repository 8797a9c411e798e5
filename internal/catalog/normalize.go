package catalog

import (
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/stacklok/toolhive-catalog-explorer/internal/versions"
)

// APIRecord is a catalog entry as delivered by a Provider
type APIRecord struct {
	ID                   int                           `json:"id" yaml:"id"`
	Name                 string                        `json:"name" yaml:"name"`
	Description          string                        `json:"description" yaml:"description"`
	LogoURL              string                        `json:"logoUrl,omitempty" yaml:"logoUrl,omitempty"`
	AddedTime            time.Time                     `json:"addedTime" yaml:"addedTime"`
	UpdateTime           time.Time                     `json:"updateTime" yaml:"updateTime"`
	Kind                 Kind                          `json:"kind" yaml:"kind"`
	Prerogatives         StoredPrerogatives            `json:"prerogatives" yaml:"prerogatives"`
	CountsByOrganization map[string]OrganizationCounts `json:"countsByOrganization" yaml:"countsByOrganization"`
	Categories           []string                      `json:"categories" yaml:"categories"`
	Keywords             []string                      `json:"keywords" yaml:"keywords"`
	SimilarNames         []string                      `json:"similarNames,omitempty" yaml:"similarNames,omitempty"`
	ParentID             *int                          `json:"parentId,omitempty" yaml:"parentId,omitempty"`
	ExternalParent       *ExternalParent               `json:"externalParent,omitempty" yaml:"externalParent,omitempty"`
	LatestVersion        *LatestVersion                `json:"latestVersion,omitempty" yaml:"latestVersion,omitempty"`
	Versions             []LatestVersion               `json:"versions,omitempty" yaml:"versions,omitempty"`
	TestURL              string                        `json:"testUrl,omitempty" yaml:"testUrl,omitempty"`
	Dereferenced         bool                          `json:"dereferenced,omitempty" yaml:"dereferenced,omitempty"`
}

// ExternalParent is a parent that lives outside of the catalog
type ExternalParent struct {
	Label string `json:"label" yaml:"label"`
	URL   string `json:"url" yaml:"url"`
}

// DeclarationType is the kind of relationship a caller declared with a record
type DeclarationType string

const (
	// DeclarationUser declares the caller uses the record
	DeclarationUser DeclarationType = "user"
	// DeclarationReferent declares the caller maintains the record
	DeclarationReferent DeclarationType = "referent"
)

// CallerDeclaration is one declaration of the current caller
type CallerDeclaration struct {
	RecordID int             `json:"recordId" yaml:"recordId"`
	Type     DeclarationType `json:"type" yaml:"type"`
}

// Collection is the full payload returned by Provider.FetchCollection
type Collection struct {
	Records []APIRecord `json:"records" yaml:"records"`
	// Declarations are nil when the caller is anonymous
	Declarations []CallerDeclaration `json:"declarations,omitempty" yaml:"declarations,omitempty"`
	CallerEmail  string              `json:"callerEmail,omitempty" yaml:"callerEmail,omitempty"`
}

// Normalize converts API records into internal records. Dereferenced records
// are dropped. When declarations is nil no record carries a caller declaration.
func Normalize(apiRecords []APIRecord, declarations []CallerDeclaration) []*Record {
	byID := make(map[int]*APIRecord, len(apiRecords))
	for i := range apiRecords {
		byID[apiRecords[i].ID] = &apiRecords[i]
	}

	var declByID map[int]*Declaration
	if declarations != nil {
		declByID = make(map[int]*Declaration)
		for _, d := range declarations {
			decl, ok := declByID[d.RecordID]
			if !ok {
				decl = &Declaration{}
				declByID[d.RecordID] = decl
			}
			switch d.Type {
			case DeclarationUser:
				decl.IsUser = true
			case DeclarationReferent:
				decl.IsReferent = true
			default:
				slog.Warn("Ignoring unknown declaration type",
					"record_id", d.RecordID,
					"type", d.Type)
			}
		}
	}

	records := make([]*Record, 0, len(apiRecords))
	for i := range apiRecords {
		api := &apiRecords[i]
		if api.Dereferenced {
			continue
		}
		rec := &Record{
			ID:                   api.ID,
			Name:                 api.Name,
			Description:          api.Description,
			LogoURL:              api.LogoURL,
			AddedTime:            api.AddedTime,
			UpdateTime:           api.UpdateTime,
			Kind:                 api.Kind,
			Prerogatives:         api.Prerogatives,
			Categories:           slices.Clone(api.Categories),
			Keywords:             slices.Clone(api.Keywords),
			SimilarNames:         slices.Clone(api.SimilarNames),
			Parent:               resolveParent(api, byID),
			LatestVersion:        latestVersion(api),
			TestURL:              api.TestURL,
			CountsByOrganization: maps.Clone(api.CountsByOrganization),
		}
		if rec.CountsByOrganization == nil {
			rec.CountsByOrganization = map[string]OrganizationCounts{}
		}
		if declByID != nil {
			if decl, ok := declByID[api.ID]; ok {
				d := *decl
				rec.Declaration = &d
			} else {
				rec.Declaration = &Declaration{}
			}
		}
		rec.Refresh()
		records = append(records, rec)
	}

	return records
}

// resolveParent prefers an in-catalog parent and falls back to the external one
func resolveParent(api *APIRecord, byID map[int]*APIRecord) *ParentRef {
	if api.ParentID != nil {
		if parent, ok := byID[*api.ParentID]; ok {
			return &ParentRef{Name: parent.Name, InCatalog: true, ID: parent.ID}
		}
		slog.Debug("Parent record not in collection",
			"record_id", api.ID,
			"parent_id", *api.ParentID)
	}
	if api.ExternalParent != nil {
		return &ParentRef{Name: api.ExternalParent.Label, URL: api.ExternalParent.URL}
	}
	return nil
}

// latestVersion picks the highest semantic version out of the version list,
// falling back to the explicit latest version field
func latestVersion(api *APIRecord) *LatestVersion {
	if len(api.Versions) == 0 {
		if api.LatestVersion == nil {
			return nil
		}
		v := *api.LatestVersion
		return &v
	}

	latest := api.Versions[0]
	for _, v := range api.Versions[1:] {
		if versions.IsNewerVersion(v.SemVer, latest.SemVer) {
			latest = v
		}
	}
	return &latest
}
