// Package gateway exposes per-scope wallet sessions over HTTP.
//
// # Overview
//
// The gateway sits between browser front ends and the external wallet
// provider. Each browsing context opens a scope, receives a signed
// scope token, and drives its session through a small JSON API instead
// of re-integrating the SDK on every page:
//
//	POST /api/session             open (or re-open) a scope
//	GET  /api/session             current status + display identity
//	POST /api/session/connect     trigger a connect attempt (202)
//	POST /api/session/disconnect  log out (always succeeds)
//	GET  /api/session/events      SSE stream of status changes
//	GET  /healthz                 liveness
//
// # Scope tokens
//
// A scope names one tab's mirrored session. Tokens are HS256-signed
// JWTs carrying the scope in "sub"; they keep tabs from reading each
// other's snapshots. Re-presenting a valid token re-opens the same
// scope, which is how a reloaded tab restores its connected view
// without re-authenticating.
//
// # Listeners
//
// The HTTP server listens on a plain TCP address or, when configured,
// on a Tailscale tsnet node so the gateway can serve a tailnet without
// exposing ports.
package gateway
