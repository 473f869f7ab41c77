// Package auth defines the identity model and the token codec for the POS
// backend's bearer credentials.
//
// Two token shapes are recognized:
//
//   - Standard JWTs issued by the user service. The codec reads the claims
//     (sub, role, iat, exp) without verifying the signature: the client never
//     holds the signing key and every request is re-verified server-side, so
//     the decoded claims are used only for local gating and display.
//   - Development tokens of the form "test-token-<username>". These map to a
//     small built-in table of well-known test identities, never expire, and
//     exist purely as a development convenience.
//
// The codec is pure over its input and an injectable clock. Expected failure
// conditions (absent, malformed, expired credentials) degrade to
// ErrMalformedCredential or a fail-closed boolean, never a panic.
package auth
