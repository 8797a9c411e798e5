package app

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stacklok/toolhive-catalog-explorer/internal/app"
	"github.com/stacklok/toolhive-catalog-explorer/internal/catalog"
	"github.com/stacklok/toolhive-catalog-explorer/internal/config"
	"github.com/stacklok/toolhive-catalog-explorer/internal/explorer"
	"github.com/stacklok/toolhive-catalog-explorer/internal/filtering"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sources"
	"github.com/stacklok/toolhive-catalog-explorer/internal/sorting"
)

// queryResult is printed by the query command
type queryResult struct {
	Sort       sorting.Key              `json:"sort"`
	TotalCount int                      `json:"totalCount"`
	Records    []catalog.ExternalRecord `json:"records"`
}

type queryOptions struct {
	configPath   string
	query        string
	sort         string
	organization string
	category     string
	environment  string
	prerogatives []string
	limit        int
}

func newQueryCmd() *cobra.Command {
	opts := &queryOptions{}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run one catalog query and print the matching records as JSON",
		Long: `Load the configured catalog once, apply a search query, filters and a sort,
then print the matching records as JSON.

The query accepts free text or a structured token such as
{"search":"","referenceId":12}.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runQuery(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "Path to configuration file (YAML format, required)")
	cmd.Flags().StringVarP(&opts.query, "query", "q", "", "Search query")
	cmd.Flags().StringVar(&opts.sort, "sort", "", "Sort key (defaults to the session default)")
	cmd.Flags().StringVar(&opts.organization, "organization", "", "Only records used by this organization")
	cmd.Flags().StringVar(&opts.category, "category", "", "Only records in this category")
	cmd.Flags().StringVar(&opts.environment, "environment", "", "Only records available in this environment")
	cmd.Flags().StringSliceVar(&opts.prerogatives, "prerogative", nil, "Required prerogatives (repeatable)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of records to print (0 prints the first page)")
	_ = cmd.MarkFlagRequired("config")

	return cmd
}

func runQuery(cmd *cobra.Command, opts *queryOptions) error {
	ctx := cmd.Context()

	if opts.limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", opts.limit)
	}
	var sortKey sorting.Key
	if opts.sort != "" {
		key, ok := sorting.ParseKey(opts.sort)
		if !ok {
			return fmt.Errorf("unknown sort key %q", opts.sort)
		}
		sortKey = key
	}

	cfg, err := config.LoadConfig(config.WithConfigPath(opts.configPath))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	provider, err := sources.NewProviderFactory().CreateProvider(&cfg.Source)
	if err != nil {
		return fmt.Errorf("failed to create catalog provider: %w", err)
	}

	session, err := app.NewSession(cfg, provider, nil)
	if err != nil {
		return fmt.Errorf("failed to create explorer session: %w", err)
	}
	defer session.Close()

	if err := session.Fetch(ctx); err != nil {
		return fmt.Errorf("failed to fetch catalog: %w", err)
	}

	prerogatives := make([]filtering.Prerogative, 0, len(opts.prerogatives))
	for _, p := range opts.prerogatives {
		prerogatives = append(prerogatives, filtering.Prerogative(p))
	}
	if err := session.SetFilters(explorer.Filters{
		Organization: opts.organization,
		Category:     opts.category,
		Environment:  filtering.Environment(opts.environment),
		Prerogatives: prerogatives,
	}); err != nil {
		return err
	}

	if err := session.SetQuery(ctx, opts.query); err != nil {
		return err
	}
	session.Flush()

	if sortKey != "" {
		if err := session.SetSort(sortKey); err != nil {
			return err
		}
	}

	for opts.limit > 0 && session.DisplayCount() < opts.limit && session.HasMoreToLoad() {
		session.LoadMore()
		session.Flush()
	}

	records := session.Records()
	if opts.limit > 0 && len(records) > opts.limit {
		records = records[:opts.limit]
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(queryResult{
		Sort:       session.Sort(),
		TotalCount: session.TotalCount(),
		Records:    records,
	})
}
