// Package store provides SQLite-backed durable storage for entities.
//
// Each row holds the canonical JSON decomposition of one entity, keyed by
// (logical_type, key), together with its content hash. The store is the
// persistence side of objects.Manager: bookmarks resolve to rows here.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Payloads are written with ir.MarshalCanonical, so equal decompositions are
// byte-identical on disk and share a content hash.
package store
