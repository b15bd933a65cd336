// Package ui implements an interactive terminal browser for a user's playlists using bubbletea's Elm architecture.
//
// Views:
//  1. [PlaylistListView] : Browse the user's playlists
//  2. [TrackListView] : Members of the selected playlist with artist and rating
//  3. [ConfirmView] : Confirm deleting the selected playlist
//  4. [ExportView] : Monitor real-time progress of an export
//  5. [ResultView] : Files written by the export
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the tasks.PlaylistEngine, providing non-blocking status reporting during exports.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, d, e, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
