// Package schedule is the pure planning half of task registration.
//
// It turns a base task name plus a list of daily "HH:MM" times into a
// deterministic, duplicate-free set of (identity, slot) pairs. No I/O happens
// here; the reconciler (internal/taskreg) owns all side effects.
package schedule
