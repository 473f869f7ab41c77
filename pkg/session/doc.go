// Package session owns the client-side authentication lifecycle: restoring
// a persisted credential at startup, logging in and out against the user
// service, and exposing the current identity, effective permission set, and
// decision cache to the permission resolver.
//
// The store moves through explicit states. It starts Uninitialized, enters
// Restoring while a persisted credential is validated, and settles in
// Anonymous or Authenticated. Login passes through Authenticating, during
// which the store reports no identity so permission checks fail closed.
//
// Every identity change bumps the store's epoch. In-flight permission
// resolutions carry the epoch they started under, and the store discards
// cache writes from stale epochs so a resolution racing a logout can never
// poison the next session's cache.
package session
