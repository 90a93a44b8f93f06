// Package models defines domain entities and persistence interfaces for the Moments service.
//
// A Moment is a user-saved clip of a track, bounded by start and end offsets in seconds.
// Moments point at the [TrackSource] they were cut from and carry a canonical track id,
// an artist/title derived key that lets clips of the same song on different services be grouped into one cluster.
//
// Persistent entities:
//   - [Moment] : A timestamped clip with optional note
//   - [TrackSource] : A playable source URL with cached metadata
//
// Both implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
