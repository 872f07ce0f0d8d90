// Package storage defines the event record model and the append-only event
// store contract.
//
// # Overview
//
// Events are written once by the ingestion path and read in ingest-time
// ranges by the aggregation engine. IngestTime is store-assigned and
// monotonic non-decreasing; it is the only field consulted for window
// membership. The client-declared EventTime is carried verbatim.
//
// # Implementations
//
//   - pkg/storage/sqlite: SQLite-backed store, usable in-memory for tests
package storage
