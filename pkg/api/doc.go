// Package api implements the HTTP surface of the analytics service.
//
// # Overview
//
// Two route groups are exposed: event ingestion (POST /api/events) and
// analytics reads (GET /api/analytics/*). Ingestion validates the payload,
// applies token-bucket admission control per client IP, and appends to the
// event store. Analytics reads are served entirely from the metrics cache
// and never touch the event store.
//
// # Error Handling
//
// Validation failures return 400 with a field-level error map. Rate-limited
// requests return 429. Store failures return a generic 500; the underlying
// error is logged server-side and never surfaced to clients.
package api
