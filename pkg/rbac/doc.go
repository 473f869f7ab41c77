// Package rbac implements client-side authorization resolution for the POS
// backend: a closed permission vocabulary, a static role-to-permission policy
// table used as the fallback authority, a session-scoped decision cache, and
// the resolver that ties them together.
//
// # Resolution order
//
// For each requested permission the resolver consults, in order:
//
//  1. The session's effective permission set, when the authority returned a
//     non-empty one at login. It overrides everything else.
//  2. The permission cache.
//  3. The authority's check-permission endpoint.
//  4. The local policy table, when the authority is unreachable.
//
// Absent or mid-transition identities always deny. Unknown permission strings
// always deny without a network call. An empty requested set always allows:
// declaring no permissions on a gate means the gate is unrestricted.
//
// # Degraded mode
//
// Answers produced by the local policy table are marked Source=fallback on
// the decision, logged, counted in metrics, and cached only for a short TTL
// so that a transient network blip cannot poison the cache for the rest of
// the session. Remote and effective-set answers are cached until the session
// store flushes the cache (logout, identity swap, explicit refresh).
//
// Batch checks fan out concurrently; a single slow remote check does not
// serialize the rest. Late results are discarded by the session store's
// epoch check, so a resolution that completes after logout cannot leak
// grants into the next session.
package rbac
