// Package cache provides the metrics cache contract and its Redis implementation.
//
// # Overview
//
// The aggregation engine is the single writer; the query service is a reader.
// Entries carry a TTL equal to the window they were computed over, so stale
// data self-clears if aggregation stalls.
//
// # Key Layout
//
//	metrics:active_users         string  distinct user count (5m TTL)
//	metrics:page_views           hash    page URL -> view count (15m TTL)
//	metrics:sessions:<userId>    set     active session IDs (5m TTL)
//
// Hash and set replacement is clear-then-write: there is a brief gap where
// the key is absent. Readers must treat a missing key as "no data yet".
package cache
