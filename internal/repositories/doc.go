// Package repositories implements SQLite persistence for moments and their track sources.
//
// Each repository handles CRUD operations with atomic sequence generation for human-readable ordering.
// All repositories support soft deletes via deleted_at timestamps and exclude deleted records from queries by default.
//
// Key Implementations:
//   - [MomentRepository] : Saved clips with canonical-track and source lookups
//   - [TrackSourceRepository] : Playable source URLs with cached metadata and find-or-create
//
// Sequence numbers provide stable, human-readable ordering (e.g., moment #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
