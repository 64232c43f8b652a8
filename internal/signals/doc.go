// Package signals implements the one-shot signal flags the pipeline
// tasks use to report health events to the supervisor. Producers raise
// individual flags without blocking; the supervisor periodically drains
// (reads and clears) the whole set in one atomic step. Between drains,
// repeated raises of the same flag collapse into a single occurrence.
package signals
