// Package logs implements offset-based tailing of the daemon log file.
//
// The CLI and the HTTP API both read the same file the daemon writes to, so
// tail semantics live here instead of being duplicated: negative offsets mean
// "last N lines", non-negative offsets resume a previous read, and follow mode
// polls until new lines arrive or the wait budget runs out.
package logs
