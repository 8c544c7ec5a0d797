// Package store provides SQLite-backed storage for the knowledge base.
//
// The schema matches the layout the sqlite renderer targets by default:
//   - notes: one row per note (path primary key, UUID id, title, content)
//   - edges: one row per typed link (source, target, type)
//
// Fixtures load from YAML; titles are NFC normalized on import so a
// lookup by title behaves the same regardless of how the source file
// encoded the text.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package store
