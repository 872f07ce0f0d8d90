// Package analytics contains the windowed aggregation engine and the
// metrics query service.
//
// # Overview
//
// The Engine runs on a fixed cadence (10s with a 5s warm-up by default),
// reads recent slices of the event store by ingest time, and publishes three
// independent aggregates into the metrics cache, each with a TTL equal to
// its window:
//
//   - active users: distinct user count over 5 minutes (scalar)
//   - page views: per-URL view counts over 15 minutes (hash, replaced whole)
//   - active sessions: per-user distinct session sets over 5 minutes
//
// There is no cross-metric transactional consistency: a reader at an unlucky
// instant can observe an updated page view table next to a not-yet-updated
// user count from the same tick. That trade-off is deliberate.
//
// Any error inside a cycle is caught at the cycle boundary, the cycle
// becomes a no-op, and the next tick retries. Cycles are idempotent: with no
// new events, a re-run publishes identical snapshots.
//
// The QueryService is the read side: fail-open cache reads reshaped into
// response payloads, with deterministic orderings (views desc then URL asc;
// session count desc then user ID asc).
//
// # Related Packages
//
//   - pkg/scheduler: drives RunCycle and RetentionCleanup
//   - pkg/cache: snapshot publication target
//   - pkg/storage: event source
package analytics
