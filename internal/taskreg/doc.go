// Package taskreg converges the host scheduler's registration table to a
// planned set of daily tasks.
//
// The scheduler itself is an injected Scheduler capability (systemd timers on
// Linux, see pkg/schedunit); taskreg only decides remove-then-create ordering,
// privilege preflight, and per-identity outcome collection.
package taskreg
