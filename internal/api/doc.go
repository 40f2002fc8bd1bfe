// Package api serves museums over HTTP.
//
// Routes:
//
//	GET  /healthz      liveness probe
//	GET  /v1/museum    build a museum for the bearer credential
//	GET  /v1/me        profile of the bearer credential
//	POST /v1/layout    lay out caller-supplied items (no upstream calls)
//
// Errors are returned as {"error": {"code": "...", "message": "..."}} with
// the status derived from the error code.
package api
