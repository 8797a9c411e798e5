package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CatalogMetricsMeterName is the meter name of the catalog instruments
const CatalogMetricsMeterName = "github.com/stacklok/toolhive-catalog-explorer/catalog"

// CatalogMetrics holds the instruments recorded by explorer sessions.
// A nil *CatalogMetrics is valid and records nothing.
type CatalogMetrics struct {
	recordsTotal   metric.Int64Gauge
	fetchDuration  metric.Float64Histogram
	searchDuration metric.Float64Histogram
	searchResults  metric.Int64Histogram
	indexBuilds    metric.Int64Counter
}

// NewCatalogMetrics creates the catalog instruments. A nil provider returns
// nil metrics.
func NewCatalogMetrics(provider metric.MeterProvider) (*CatalogMetrics, error) {
	if provider == nil {
		return nil, nil
	}

	meter := provider.Meter(CatalogMetricsMeterName)

	recordsTotal, err := meter.Int64Gauge(
		"thv_catalog_records_total",
		metric.WithDescription("Number of records in the loaded catalog"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, err
	}

	fetchDuration, err := meter.Float64Histogram(
		"thv_catalog_fetch_duration_seconds",
		metric.WithDescription("Duration of catalog fetches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30),
	)
	if err != nil {
		return nil, err
	}

	searchDuration, err := meter.Float64Histogram(
		"thv_catalog_search_duration_seconds",
		metric.WithDescription("Duration of full-text searches in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, err
	}

	searchResults, err := meter.Int64Histogram(
		"thv_catalog_search_results",
		metric.WithDescription("Number of records matched by a full-text search"),
		metric.WithUnit("{record}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return nil, err
	}

	indexBuilds, err := meter.Int64Counter(
		"thv_catalog_index_builds_total",
		metric.WithDescription("Search index builds by outcome"),
		metric.WithUnit("{build}"),
	)
	if err != nil {
		return nil, err
	}

	return &CatalogMetrics{
		recordsTotal:   recordsTotal,
		fetchDuration:  fetchDuration,
		searchDuration: searchDuration,
		searchResults:  searchResults,
		indexBuilds:    indexBuilds,
	}, nil
}

// RecordRecordsTotal records the current number of records in a catalog
func (m *CatalogMetrics) RecordRecordsTotal(ctx context.Context, catalogName string, count int64) {
	if m == nil || m.recordsTotal == nil {
		return
	}
	m.recordsTotal.Record(ctx, count, metric.WithAttributes(attribute.String("catalog", catalogName)))
}

// RecordFetchDuration records the duration of a catalog fetch
func (m *CatalogMetrics) RecordFetchDuration(ctx context.Context, catalogName string, duration time.Duration, success bool) {
	if m == nil || m.fetchDuration == nil {
		return
	}
	m.fetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("catalog", catalogName),
		attribute.Bool("success", success),
	))
}

// RecordSearch records the duration and result count of a full-text search
func (m *CatalogMetrics) RecordSearch(ctx context.Context, catalogName string, duration time.Duration, results int) {
	if m == nil || m.searchDuration == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("catalog", catalogName))
	m.searchDuration.Record(ctx, duration.Seconds(), attrs)
	m.searchResults.Record(ctx, int64(results), attrs)
}

// RecordIndexBuild counts a search index build with its status, "built" or "skipped"
func (m *CatalogMetrics) RecordIndexBuild(ctx context.Context, catalogName, status string) {
	if m == nil || m.indexBuilds == nil {
		return
	}
	m.indexBuilds.Add(ctx, 1, metric.WithAttributes(
		attribute.String("catalog", catalogName),
		attribute.String("status", status),
	))
}
