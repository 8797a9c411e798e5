package sources

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
)

var (
	// ErrAnonymousCaller is returned when a caller declaration is updated without a known caller
	ErrAnonymousCaller = errors.New("caller is anonymous")
	// ErrUnsupportedOperation is returned for record operations a provider does not know
	ErrUnsupportedOperation = errors.New("unsupported record operation")
)

// CollectionValidator validates raw collection data
type CollectionValidator interface {
	// ValidateData parses raw YAML or JSON data into a collection
	ValidateData(data []byte) (*catalog.Collection, error)
}

// ProviderFactory creates catalog providers from source configurations
type ProviderFactory interface {
	// CreateProvider creates the provider for the given source
	CreateProvider(source *config.SourceConfig) (catalog.Provider, error)
}

// defaultCollectionValidator checks record identity and the declaration references
type defaultCollectionValidator struct{}

// NewCollectionValidator creates the default collection validator
func NewCollectionValidator() CollectionValidator {
	return &defaultCollectionValidator{}
}

// ValidateData parses data, which may be YAML or JSON, and checks that every
// record has a positive unique id and a name, and that every declaration
// targets a known record.
func (*defaultCollectionValidator) ValidateData(data []byte) (*catalog.Collection, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("data cannot be empty")
	}

	var collection catalog.Collection
	unmarshal := yaml.Unmarshal
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte("{")) {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("failed to parse catalog collection: %w", err)
	}

	if err := validateCollection(&collection); err != nil {
		return nil, fmt.Errorf("invalid catalog collection: %w", err)
	}
	return &collection, nil
}

func validateCollection(collection *catalog.Collection) error {
	seen := make(map[int]struct{}, len(collection.Records))
	for i, rec := range collection.Records {
		if rec.ID <= 0 {
			return fmt.Errorf("record at index %d: id must be positive, got %d", i, rec.ID)
		}
		if rec.Name == "" {
			return fmt.Errorf("record at index %d (id %d): name is required", i, rec.ID)
		}
		if _, dup := seen[rec.ID]; dup {
			return fmt.Errorf("record at index %d: duplicate id %d", i, rec.ID)
		}
		seen[rec.ID] = struct{}{}
	}

	for i, decl := range collection.Declarations {
		if _, ok := seen[decl.RecordID]; !ok {
			return fmt.Errorf("declaration at index %d: unknown record %d", i, decl.RecordID)
		}
		switch decl.Type {
		case catalog.DeclarationUser, catalog.DeclarationReferent:
		default:
			return fmt.Errorf("declaration at index %d: unknown type %q", i, decl.Type)
		}
	}
	return nil
}

// declarationsFor expands a declaration into the caller declarations of a record
func declarationsFor(id int, decl catalog.Declaration) []catalog.CallerDeclaration {
	var out []catalog.CallerDeclaration
	if decl.IsUser {
		out = append(out, catalog.CallerDeclaration{RecordID: id, Type: catalog.DeclarationUser})
	}
	if decl.IsReferent {
		out = append(out, catalog.CallerDeclaration{RecordID: id, Type: catalog.DeclarationReferent})
	}
	return out
}
