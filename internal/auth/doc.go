// Package auth implements credential checks and signed login sessions.
//
// Passwords are hashed with bcrypt and never stored or logged in plaintext. A successful
// login yields an HS256 JWT carrying the user's id and username, which the HTTP layer keeps
// in an HttpOnly cookie. Handlers read the caller from the request context as an [Identity]
// and pass its UserID explicitly to every owner-scoped operation.
package auth
