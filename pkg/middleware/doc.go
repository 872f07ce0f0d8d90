// Package middleware provides HTTP middleware for the ingestion and
// analytics APIs.
//
// # Overview
//
// Two concerns live here: request logging with per-request IDs, and
// token-bucket rate limiting keyed by client IP. Buckets are stored in an
// expirable LRU so limiter state stays bounded under churn.
package middleware
