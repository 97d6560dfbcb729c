// Package api serves the daemon's HTTP surface.
//
// The server exposes read endpoints for health, themes, the poem catalog,
// and queue state, plus a single write endpoint that validates and enqueues
// a video generation request. All responses are JSON. When an API token is
// configured every endpoint requires bearer authentication.
package api
