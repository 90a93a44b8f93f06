// Package tasks runs the clustering and maintenance operations over stored moments with real-time progress reporting.
//
// # Core Operations
//
// [ClusterEngine] provides three operations:
//
//  1. [ClusterEngine.Summarize] : Cluster moments per track
//     - Loads moments matching the given criteria
//     - Groups them by canonical track, track source or artist
//     - Computes the total and core range of each group with [clustering.CalculateRanges]
//
//  2. [ClusterEngine.BackfillCanonical] : Assign canonical track ids
//     - Derives ids from artist and title for track sources missing one
//     - Propagates the id to moments of that source that have none
//
//  3. [ClusterEngine.RefreshDurations] : Fill in missing track durations
//     - Looks up metadata for track sources without a duration
//     - Runs lookups on a rate-limited worker pool
//     - Collects per-source failures instead of aborting
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
