// Package services wraps the external music metadata API.
//
// [LastFMService] is the only implementation of [MetadataService]. Every lookup is a fresh
// round trip: nothing is cached. Calls share a rate limiter and honour the caller's context.
//
// Error policy: an entity Last.fm does not know, or a response missing a required field,
// yields [shared.ErrArtistNotFound] or [shared.ErrTrackNotFound]; transport and decoding
// failures wrap [shared.ErrAPIRequest]. No error escapes untyped.
package services
