// Package catalog defines the catalog record model shared by the explorer
// components, along with normalization from the raw records delivered by a
// Provider.
package catalog

import (
	"errors"
	"time"
)

var (
	// ErrRecordNotFound is returned when an operation targets a record that is not in the collection
	ErrRecordNotFound = errors.New("record not found")
	// ErrFetchFailed is returned when the collection could not be fetched from the provider
	ErrFetchFailed = errors.New("catalog fetch failed")
)

// KindType is the deployment kind of a record
type KindType string

const (
	// KindCloud is a record consumed through a browser
	KindCloud KindType = "cloud"
	// KindDesktopMobile is a record installed on a personal machine or phone
	KindDesktopMobile KindType = "desktop/mobile"
	// KindStack is a record used as a building block of other software
	KindStack KindType = "stack"
)

// OperatingSystems holds the per-OS flags of a desktop/mobile record
type OperatingSystems struct {
	Windows bool `json:"windows" yaml:"windows"`
	Linux   bool `json:"linux" yaml:"linux"`
	Mac     bool `json:"mac" yaml:"mac"`
	Android bool `json:"android" yaml:"android"`
	IOS     bool `json:"ios" yaml:"ios"`
}

// Kind describes the deployment environment(s) of a record.
// OS is only meaningful when Type is KindDesktopMobile.
type Kind struct {
	Type KindType         `json:"type" yaml:"type"`
	OS   OperatingSystems `json:"os,omitempty" yaml:"os,omitempty"`
}

// IsDesktopMobile reports whether the kind is desktop/mobile
func (k Kind) IsDesktopMobile() bool {
	return k.Type == KindDesktopMobile
}

// StoredPrerogatives are the prerogative flags delivered with a record
type StoredPrerogatives struct {
	IsPresentInSupportContract bool `json:"isPresentInSupportContract" yaml:"isPresentInSupportContract"`
	IsFromFrenchPublicServices bool `json:"isFromFrenchPublicServices" yaml:"isFromFrenchPublicServices"`
	DoRespectRgaa              bool `json:"doRespectRgaa" yaml:"doRespectRgaa"`
}

// Prerogatives is the full prerogative set exposed to consumers, including
// the flags derived from the kind and the test URL
type Prerogatives struct {
	StoredPrerogatives          `yaml:",inline"`
	IsInstallableOnUserComputer bool `json:"isInstallableOnUserComputer" yaml:"isInstallableOnUserComputer"`
	IsAvailableAsMobileApp      bool `json:"isAvailableAsMobileApp" yaml:"isAvailableAsMobileApp"`
	IsTestable                  bool `json:"isTestable" yaml:"isTestable"`
}

// OrganizationCounts holds per-organization usage numbers
type OrganizationCounts struct {
	UserCount     int `json:"userCount" yaml:"userCount"`
	ReferentCount int `json:"referentCount" yaml:"referentCount"`
}

// ParentRef references the parent of a record, either inside the collection
// (ID set, InCatalog true) or outside of it (URL set)
type ParentRef struct {
	Name      string `json:"name"`
	InCatalog bool   `json:"inCatalog"`
	ID        int    `json:"id,omitempty"`
	URL       string `json:"url,omitempty"`
}

// LatestVersion describes the most recent release of a record
type LatestVersion struct {
	SemVer          string    `json:"semVer" yaml:"semVer"`
	PublicationTime time.Time `json:"publicationTime" yaml:"publicationTime"`
}

// Declaration is the relationship between the current caller and a record
type Declaration struct {
	IsUser     bool `json:"isUser" yaml:"isUser"`
	IsReferent bool `json:"isReferent" yaml:"isReferent"`
}

// Record is the normalized, internal representation of a catalog entry.
// Derived fields (UserCount, ReferentCount, Organizations, Search) must be
// regenerated with Refresh whenever a constituent field changes.
type Record struct {
	ID            int
	Name          string
	Description   string
	LogoURL       string
	AddedTime     time.Time
	UpdateTime    time.Time
	Kind          Kind
	Prerogatives  StoredPrerogatives
	Categories    []string
	Keywords      []string
	SimilarNames  []string
	Parent        *ParentRef
	LatestVersion *LatestVersion
	TestURL       string
	Declaration   *Declaration

	CountsByOrganization map[string]OrganizationCounts

	UserCount     int
	ReferentCount int
	Organizations []string
	Search        string
}

// Highlight marks the characters of a display name matched by a search
type Highlight struct {
	Chars   []string `json:"chars"`
	Indexes []int    `json:"indexes"`
}

// ExternalRecord is the read-only projection of a Record handed to consumers
type ExternalRecord struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	LogoURL       string         `json:"logoUrl,omitempty"`
	LatestVersion *LatestVersion `json:"latestVersion,omitempty"`
	UserCount     int            `json:"userCount"`
	ReferentCount int            `json:"referentCount"`
	Parent        *ParentRef     `json:"parent,omitempty"`
	TestURL       string         `json:"testUrl,omitempty"`
	Declaration   *Declaration   `json:"declaration,omitempty"`
	Prerogatives  Prerogatives   `json:"prerogatives"`
	Highlight     *Highlight     `json:"highlight,omitempty"`
}
