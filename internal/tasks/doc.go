// Package tasks implements the four long-running task loops of the
// pipeline: the producer that generates sequential values, the
// consumer that drains them and runs the escalating-recovery state
// machine, the supervisor that projects raised signals into the log
// stream, and the reporter that emits periodic runtime status. Each
// loop runs on its own fixed tick, never blocks on the data path, and
// pets the watchdog once per tick.
package tasks
