// Package client is the REST client for the POS backend services: the user
// service (auth, RBAC, user management) and the POS service (sales,
// inventory).
//
// Every authenticated request carries the session's bearer token and a
// request ID. A 401 from any endpoint fires the registered OnUnauthorized
// hook exactly once per response, which the session store uses to drop the
// session; the error is still returned to the caller. Transport failures and
// timeouts map to ErrAuthorityUnreachable so the permission resolver can
// switch to its local fallback.
package client
