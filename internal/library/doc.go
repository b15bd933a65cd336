// Package library holds tracklist's core operations: the entity store for artists
// and tracks, and the owner-scoped playlist manager.
//
// Every operation takes the owner's user id explicitly; nothing reads a global
// "current user". Mutations are persisted immediately.
package library
