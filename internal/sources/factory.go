package sources

import (
	"fmt"

	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
)

// defaultProviderFactory is the default implementation of ProviderFactory
type defaultProviderFactory struct{}

var _ ProviderFactory = (*defaultProviderFactory)(nil)

// NewProviderFactory creates a new provider factory
func NewProviderFactory() ProviderFactory {
	return &defaultProviderFactory{}
}

// CreateProvider creates the provider for the type inferred from the source
func (*defaultProviderFactory) CreateProvider(source *config.SourceConfig) (catalog.Provider, error) {
	if source == nil {
		return nil, fmt.Errorf("source configuration cannot be nil")
	}

	switch sourceType := source.GetType(); sourceType {
	case config.SourceTypeAPI:
		return NewAPIProvider(source.API)
	case config.SourceTypeFile:
		return NewFileProvider(source.File)
	default:
		return nil, fmt.Errorf("unsupported source type: %q", sourceType)
	}
}
