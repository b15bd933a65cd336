// Package models defines the domain entities persisted by tracklist.
//
// The package contains two categories of types:
//
// 1. Persistent Entities: database-backed models with IDs, sequence numbers and timestamps
//   - [User] : registered accounts; the password hash never leaves the process
//   - [Artist] : performers, created lazily the first time a track references them
//   - [Track] : songs identified by title, bound to an artist and carrying a [Rating]
//   - [Playlist] : named collections owned by a single user
//
// 2. Views: read-only structs assembled from joins for display and export
//   - [PlaylistEntry] : a playlist member with its resolved artist name
//   - [PlaylistExport] : a playlist and all of its entries
//
// All persistent entities implement the [Model] interface. [Repository] describes the
// minimal data access contract shared by the repositories package.
package models
