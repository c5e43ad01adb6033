// Package store provides SQLite-backed persistence for exploration runs.
//
// A run is written once, in a single transaction, after the batch finished:
//   - Runs: configuration, its hash and the batch statistics
//   - Attempts: one row per attempted string with its failure code
//   - Buckets: one row per surviving feature key with its claimant
//   - Meshes: the exported mesh of every claimant
//
// # Critical Patterns
//
// Idempotent writes
//   - every INSERT uses ON CONFLICT DO NOTHING
//   - writing the same run twice leaves the database unchanged
//
// Deterministic reads
//   - attempts and meshes are ordered by seq, the input order of the batch
//   - buckets are ordered by feature key COLLATE BINARY
//   - runs are ordered by id; UUIDv7 ids sort by start time
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
