// Package api serves the read-only operational status of the daemon
// over HTTP: a liveness probe and a snapshot of the current run
// (runtime facts, last supervisor drain, watchdog pet ages). It has no
// feedback path into the pipeline; it is an observer only.
package api
