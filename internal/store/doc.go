// Package store provides SQLite-backed durable storage for kibitz
// match logs and their derived artifacts.
//
// The store holds:
//   - Events: the immutable, seq-ordered match log
//   - Ingest batches: provenance for each log import
//   - Moments: detected or precomputed turning points
//   - Commentary: bound commentary entries
//
// # Critical Patterns
//
// All ordering uses seq INTEGER (logical clock), never timestamps, so
// replay from the store is deterministic regardless of wall time. All
// queries order by seq ASC with a binary id tie-break for identical
// results across replays. Payloads are stored as RFC 8785 canonical
// JSON, making replay verification a byte comparison.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
