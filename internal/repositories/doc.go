// Package repositories provides the SQLite persistence layer for every model type.
//
// Each repository wraps a *sql.DB and implements [models.Repository] for its entity.
// Get-or-create style operations rely on the schema's UNIQUE constraints and
// INSERT ... ON CONFLICT so that concurrent duplicates collapse into a single row.
//
// Lookups that find nothing wrap the matching shared sentinel (ErrUserNotFound,
// ErrArtistNotFound, ErrTrackNotFound, ErrPlaylistNotFound) so callers can use errors.Is.
package repositories
