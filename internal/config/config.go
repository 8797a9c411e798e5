// Package config provides configuration loading and management for the catalog explorer.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stacklok/toolhive-catalog-explorer/internal/telemetry"
)

const (
	// SourceTypeAPI is the type for catalog data fetched from the catalog API
	SourceTypeAPI = "api"

	// SourceTypeFile is the type for catalog data stored in a local file
	SourceTypeFile = "file"
)

// EnvPrefix is the prefix of the environment variables read by the binary
const EnvPrefix = "THV_CATALOG"

const (
	// DefaultCatalogName is used when no catalog name is configured
	DefaultCatalogName = "default"

	// DefaultPageSize is the number of records displayed per page
	DefaultPageSize = 24

	// DefaultMinSearchLength is the minimum number of runes a search needs
	DefaultMinSearchLength = 3

	// DefaultSearchDebounce is the quiet period before a typed search is committed
	DefaultSearchDebounce = 750 * time.Millisecond

	// DefaultLoadMoreDebounce is the quiet period before a load-more request is applied
	DefaultLoadMoreDebounce = 50 * time.Millisecond

	// DefaultAPITimeout is the request timeout of the API source
	DefaultAPITimeout = 30 * time.Second
)

// Option defines the interface for configuration options
type Option func(*loaderConfig) error

// loaderConfig defines the configuration for loading a configuration
type loaderConfig struct {
	path string
}

// WithConfigPath loads configuration from a YAML file
func WithConfigPath(path string) Option {
	return func(cfg *loaderConfig) error {
		if path == "" {
			return fmt.Errorf("path is required")
		}

		// Resolve symlinks, this also cleans the path
		realPath, err := filepath.EvalSymlinks(path)
		if err != nil {
			return fmt.Errorf("failed to evaluate symlinks: %w", err)
		}

		if !filepath.IsAbs(realPath) && !filepath.IsLocal(realPath) {
			return fmt.Errorf("path is not local or contains invalid traversal: %s", path)
		}

		cfg.path = realPath
		return nil
	}
}

// Config represents the root configuration structure
type Config struct {
	// CatalogName identifies this catalog instance in logs and telemetry
	// Defaults to "default" if not specified
	CatalogName string            `yaml:"catalogName,omitempty"`
	Source      SourceConfig      `yaml:"source"`
	Filter      *FilterConfig     `yaml:"filter,omitempty"`
	Explorer    *ExplorerConfig   `yaml:"explorer,omitempty"`
	Telemetry   *telemetry.Config `yaml:"telemetry,omitempty"`
}

// SourceConfig defines where the catalog records come from.
// Exactly one of the type-specific configurations must be set.
type SourceConfig struct {
	API  *APIConfig  `yaml:"api,omitempty"`
	File *FileConfig `yaml:"file,omitempty"`
}

// APIConfig defines the catalog API source
type APIConfig struct {
	// Endpoint is the base API URL (without path)
	// The provider appends the catalog paths, for instance:
	//   - /v0/records - List all records
	//   - /v0/declarations - List the caller declarations
	// Example: "https://catalog.example.gouv.fr/api"
	Endpoint string `yaml:"endpoint"`

	// Timeout is the request timeout (e.g., "10s"), defaults to 30s
	Timeout string `yaml:"timeout,omitempty"`

	// CallerEmail identifies the caller. When empty, the caller is anonymous
	// and no declarations are fetched.
	CallerEmail string `yaml:"callerEmail,omitempty"`
}

// FileConfig defines local file source configuration
type FileConfig struct {
	// Path is the path to the catalog YAML or JSON file
	// Can be absolute or relative to the working directory
	Path string `yaml:"path"`
}

// FilterConfig defines the rules selecting which source records enter the catalog
type FilterConfig struct {
	Names      *NameFilterConfig     `yaml:"names,omitempty"`
	Categories *CategoryFilterConfig `yaml:"categories,omitempty"`
}

// NameFilterConfig defines name-based filtering with glob patterns
type NameFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// CategoryFilterConfig defines category-based filtering
type CategoryFilterConfig struct {
	Include []string `yaml:"include,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

// ExplorerConfig tunes the search and pagination behavior of explorer sessions
type ExplorerConfig struct {
	PageSize         int    `yaml:"pageSize,omitempty"`
	MinSearchLength  int    `yaml:"minSearchLength,omitempty"`
	SearchDebounce   string `yaml:"searchDebounce,omitempty"`
	LoadMoreDebounce string `yaml:"loadMoreDebounce,omitempty"`
}

// LoadConfig loads and parses configuration from a YAML file
func LoadConfig(opts ...Option) (*Config, error) {
	loaderCfg := &loaderConfig{}
	for _, opt := range opts {
		if err := opt(loaderCfg); err != nil {
			return nil, err
		}
	}

	if loaderCfg.path == "" {
		return nil, fmt.Errorf("path is required")
	}

	data, err := os.ReadFile(loaderCfg.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// GetCatalogName returns the catalog name, using "default" if not specified
func (c *Config) GetCatalogName() string {
	if c.CatalogName == "" {
		return DefaultCatalogName
	}
	return c.CatalogName
}

// GetExplorer returns the explorer configuration, never nil
func (c *Config) GetExplorer() *ExplorerConfig {
	if c.Explorer == nil {
		return &ExplorerConfig{}
	}
	return c.Explorer
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if err := validateSource(&c.Source); err != nil {
		return err
	}

	if c.Explorer != nil {
		if err := c.Explorer.validate(); err != nil {
			return fmt.Errorf("explorer: %w", err)
		}
	}

	if err := c.Telemetry.Validate(); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}

	return nil
}

// validateSource ensures exactly one source type is configured and valid
func validateSource(src *SourceConfig) error {
	configCount := 0
	if src.API != nil {
		configCount++
	}
	if src.File != nil {
		configCount++
	}

	if configCount == 0 {
		return fmt.Errorf("source: one of api or file configuration must be specified")
	}
	if configCount > 1 {
		return fmt.Errorf("source: only one of api or file configuration may be specified")
	}

	if src.API != nil {
		return validateAPIConfig(src.API)
	}
	return validateFileConfig(src.File)
}

// validateAPIConfig validates API-specific configuration
func validateAPIConfig(api *APIConfig) error {
	if api.Endpoint == "" {
		return fmt.Errorf("source: api.endpoint is required")
	}
	u, err := url.Parse(api.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("source: api.endpoint must be an absolute URL, got %q", api.Endpoint)
	}
	if api.Timeout != "" {
		if _, err := time.ParseDuration(api.Timeout); err != nil {
			return fmt.Errorf("source: api.timeout must be a valid duration (e.g., '10s'): %w", err)
		}
	}
	return nil
}

// validateFileConfig validates File-specific configuration
func validateFileConfig(file *FileConfig) error {
	if file.Path == "" {
		return fmt.Errorf("source: file.path is required")
	}
	return nil
}

func (e *ExplorerConfig) validate() error {
	if e.PageSize < 0 {
		return fmt.Errorf("pageSize must not be negative, got %d", e.PageSize)
	}
	if e.MinSearchLength < 0 {
		return fmt.Errorf("minSearchLength must not be negative, got %d", e.MinSearchLength)
	}
	for name, value := range map[string]string{
		"searchDebounce":   e.SearchDebounce,
		"loadMoreDebounce": e.LoadMoreDebounce,
	} {
		if value == "" {
			continue
		}
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s must be a valid duration (e.g., '750ms'): %w", name, err)
		}
		if d < 0 {
			return fmt.Errorf("%s must not be negative, got %s", name, value)
		}
	}
	return nil
}

// GetType returns the inferred type of the source config based on which field is present
func (s *SourceConfig) GetType() string {
	if s.API != nil {
		return SourceTypeAPI
	}
	if s.File != nil {
		return SourceTypeFile
	}
	return ""
}

// GetTimeout returns the API request timeout, using the default if unset or invalid
func (a *APIConfig) GetTimeout() time.Duration {
	return parseDurationOr(a.Timeout, DefaultAPITimeout)
}

// GetPageSize returns the page size, using the default if not specified
func (e *ExplorerConfig) GetPageSize() int {
	if e.PageSize <= 0 {
		return DefaultPageSize
	}
	return e.PageSize
}

// GetMinSearchLength returns the minimum search length, using the default if not specified
func (e *ExplorerConfig) GetMinSearchLength() int {
	if e.MinSearchLength <= 0 {
		return DefaultMinSearchLength
	}
	return e.MinSearchLength
}

// GetSearchDebounce returns the search debounce delay
func (e *ExplorerConfig) GetSearchDebounce() time.Duration {
	return parseDurationOr(e.SearchDebounce, DefaultSearchDebounce)
}

// GetLoadMoreDebounce returns the load-more debounce delay
func (e *ExplorerConfig) GetLoadMoreDebounce() time.Duration {
	return parseDurationOr(e.LoadMoreDebounce, DefaultLoadMoreDebounce)
}

func parseDurationOr(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return d
}
