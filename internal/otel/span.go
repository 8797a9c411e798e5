// Package otel holds the span helpers and attribute keys shared by the
// catalog explorer packages.
package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used on explorer spans
const (
	AttrCatalogName   = attribute.Key("catalog.name")
	AttrCatalogSource = attribute.Key("catalog.source")
	AttrRecordID      = attribute.Key("record.id")
	AttrRecordCount   = attribute.Key("record.count")
	AttrSearchLength  = attribute.Key("search.length")
	AttrSearchActive  = attribute.Key("search.active")
	AttrReferenceID   = attribute.Key("search.reference_id")
	AttrSortKey       = attribute.Key("sort.key")
	AttrDisplayCount  = attribute.Key("pagination.display_count")
	AttrResultCount   = attribute.Key("result.count")
	AttrIndexStatus   = attribute.Key("index.status")
)

// StartSpan starts a span on tracer. With a nil tracer ctx is returned
// unchanged along with a non-recording span, so ending it never ends a
// span owned by the caller.
func StartSpan(
	ctx context.Context,
	tracer trace.Tracer,
	name string,
	opts ...trace.SpanStartOption,
) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return tracer.Start(ctx, name, opts...)
}

// RecordError marks span as failed. The status description stays generic;
// the error itself is kept in the exception event.
func RecordError(span trace.Span, err error) {
	if err != nil && span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "operation failed")
	}
}

// End records err, if any, and ends span
func End(span trace.Span, err error) {
	if span == nil {
		return
	}
	RecordError(span, err)
	span.End()
}
