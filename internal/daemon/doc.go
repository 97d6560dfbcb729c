// Package daemon wires the long-running verselined process together: the
// queue store, the workflow manager, the HTTP API server, and a lock file
// that enforces single-instance execution.
package daemon
