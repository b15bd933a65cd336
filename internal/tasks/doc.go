// Package tasks runs long playlist operations with real-time progress reporting.
//
// # Core Operations
//
//  1. [PlaylistEngine.BulkExport] : Export every playlist of an owner
//     - Lists the owner's playlists (or the IDs given in [BulkExportOpts])
//     - Exports each through a bounded worker pool in the requested [formatter.Format]
//     - Optionally looks up a cover image for Markdown exports, rate limited
//     - Writes export_manifest.json summarising successes and failures
//
//  2. [PlaylistEngine.SeedFromChart] : Fill a playlist from the current top tracks
//     - Fetches the chart from the [services.MetadataService]
//     - Gets or creates the named playlist for the owner
//     - Adds each charted track with the given rating
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
package tasks
