// Package server exposes plans over HTTP with gin.
//
// Routes:
//
//	GET  /health            component health (Redis when configured)
//	GET  /alive             liveness
//	GET  /info              build information
//	GET  /v1/plans          plan names
//	GET  /v1/plans/:name    plan definition
//	POST /v1/plans/:name/run
//	GET  /v1/runs/:id       stored run result (needs a RunStore)
//
// A run request body is either a JSON array of items or an object with an
// "items" array. Errors are rendered from errors.AppError.
package server
