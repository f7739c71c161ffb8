package taskreg

import (
	"context"
	"errors"
	"time"

	"pricemon/internal/schedule"
)

// ErrNotFound reports that no registration exists under a given identity.
// Unregister treats it as success (removal is idempotent).
var ErrNotFound = errors.New("task not found")

// ErrPrivilege reports that the current process lacks the privilege required
// to manage scheduler entries. Raised by Preflight only, before any mutation.
var ErrPrivilege = errors.New("insufficient privilege to manage scheduled tasks")

// ErrSchedulerUnavailable reports that the host scheduling subsystem cannot be
// reached at all (e.g. no system bus). Fatal for the whole run.
var ErrSchedulerUnavailable = errors.New("task scheduler unavailable")

// ActionSpec describes what a registration executes: the worker binary, its
// arguments (always including the single-shot flag) and the working directory.
// One ActionSpec is shared by every registration in a run.
type ActionSpec struct {
	ExecPath string
	Args     []string
	WorkDir  string
}

// RunPolicy bundles scheduler-level execution tolerances shared by all slots.
//
// CatchUpMissedRun asks the scheduler to fire as soon as possible when a
// scheduled start was missed (host powered off at the slot time).
type RunPolicy struct {
	RunOnBattery     bool
	CatchUpMissedRun bool
	WakeSystem       bool
}

// Principal is the account context a registration runs under. Empty fields
// fall back to the scheduler's default (root for system-level timers).
type Principal struct {
	User  string
	Group string
}

// Registration is a live scheduler entry as reported by Query.
type Registration struct {
	ID      string
	State   string
	LastRun time.Time
	NextRun time.Time
}

// Scheduler is the host task-scheduling subsystem, modeled as an injected
// capability so reconciliation can be exercised against a fake in tests.
//
// All calls are synchronous round-trips; the reconciler never issues
// concurrent calls within one run.
type Scheduler interface {
	// Preflight verifies the caller may manage registrations. It must be
	// side-effect free and is called exactly once before any mutation.
	Preflight(ctx context.Context) error

	// Register creates a registration under id firing daily at slot.
	// Any prior registration under id must already have been removed.
	Register(ctx context.Context, id string, action ActionSpec, slot schedule.TimeSlot, policy RunPolicy, principal Principal) error

	// Unregister removes the registration under id.
	// Returns ErrNotFound (possibly wrapped) when none exists.
	Unregister(ctx context.Context, id string) error

	// Query lists live registrations whose identity matches pattern
	// (shell-style glob, e.g. "PriceMonitor_*").
	Query(ctx context.Context, pattern string) ([]Registration, error)

	// StartNow triggers the registered action immediately, out of schedule.
	StartNow(ctx context.Context, id string) error
}

// Outcome classifies one per-identity reconciliation result.
type Outcome int

const (
	OutcomeRegistered Outcome = iota // fresh registration, nothing removed
	OutcomeReplaced                  // prior registration removed first
	OutcomeFailed

	// uninstall-only outcomes
	OutcomeRemoved
	OutcomeAbsent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRegistered:
		return "registered"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeFailed:
		return "failed"
	case OutcomeRemoved:
		return "removed"
	case OutcomeAbsent:
		return "absent"
	default:
		return "unknown"
	}
}

// Result is the outcome for a single task identity.
type Result struct {
	ID      string
	Slot    schedule.TimeSlot
	Outcome Outcome
	Err     error
}

// Summary aggregates per-identity results for one reconciliation run.
// Removed/Absent are only populated by the uninstall path.
type Summary struct {
	Results    []Result
	Registered int
	Replaced   int
	Removed    int
	Absent     int
	Failed     int
}

// OK reports whether every identity converged.
func (s Summary) OK() bool { return s.Failed == 0 }
