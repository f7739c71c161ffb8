package taskreg

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pricemon/internal/schedule"
	logx "pricemon/pkg/logx"
)

// opTimeout bounds each scheduler round-trip so one wedged call cannot hang
// the whole run.
const opTimeout = 15 * time.Second

// Reconciler converges the live scheduler state to a planned task set.
//
// It keeps no state between runs: the external scheduler is the sole source
// of truth, and every run is a from-scratch convergence pass. Running it
// twice with the same inputs ends in the same live set as running it once.
type Reconciler struct {
	sched Scheduler
	log   logx.Logger
}

func NewReconciler(sched Scheduler, log logx.Logger) *Reconciler {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Reconciler{sched: sched, log: log}
}

// Reconcile replaces the registration for every planned identity.
//
// Phase 1 is a single fatal precondition gate: if Preflight fails, the run
// aborts with zero side effects. Phase 2 walks the planned set best-effort;
// a failure on one identity is recorded and does not stop the others.
// Per identity, the step is remove-then-create: an in-place update is not
// assumed to exist on the target scheduler, and absence of a prior entry is
// success, not an error.
func (r *Reconciler) Reconcile(ctx context.Context, planned []schedule.Task, action ActionSpec, policy RunPolicy, principal Principal) (Summary, error) {
	if len(planned) == 0 {
		return Summary{}, fmt.Errorf("empty planned set")
	}

	if err := r.preflight(ctx); err != nil {
		return Summary{}, err
	}

	sum := Summary{Results: make([]Result, 0, len(planned))}
	for _, task := range planned {
		res := r.reconcileOne(ctx, task, action, policy, principal)
		switch res.Outcome {
		case OutcomeRegistered:
			sum.Registered++
		case OutcomeReplaced:
			sum.Replaced++
		case OutcomeFailed:
			sum.Failed++
		}
		sum.Results = append(sum.Results, res)
	}
	return sum, nil
}

func (r *Reconciler) preflight(ctx context.Context) error {
	pctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if err := r.sched.Preflight(pctx); err != nil {
		r.log.Error("preflight failed, aborting before any mutation", logx.Err(err))
		return err
	}
	return nil
}

func (r *Reconciler) reconcileOne(ctx context.Context, task schedule.Task, action ActionSpec, policy RunPolicy, principal Principal) Result {
	res := Result{ID: task.ID, Slot: task.Slot}

	// Step 1: delete-if-present. ErrNotFound means there was nothing to
	// replace, which is fine.
	replaced := true
	octx, cancel := context.WithTimeout(ctx, opTimeout)
	err := r.sched.Unregister(octx, task.ID)
	cancel()
	switch {
	case err == nil:
		r.log.Debug("removed prior registration", logx.String("task", task.ID))
	case errors.Is(err, ErrNotFound):
		replaced = false
	default:
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("unregister %s: %w", task.ID, err)
		r.log.Error("unregister failed", logx.String("task", task.ID), logx.Err(err))
		return res
	}

	// Step 2: fresh registration with the current action/trigger/policy.
	octx, cancel = context.WithTimeout(ctx, opTimeout)
	err = r.sched.Register(octx, task.ID, action, task.Slot, policy, principal)
	cancel()
	if err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("register %s: %w", task.ID, err)
		r.log.Error("register failed", logx.String("task", task.ID), logx.Err(err))
		return res
	}

	if replaced {
		res.Outcome = OutcomeReplaced
	} else {
		res.Outcome = OutcomeRegistered
	}
	r.log.Info("registration converged",
		logx.String("task", task.ID),
		logx.String("at", task.Slot.String()),
		logx.String("outcome", res.Outcome.String()))
	return res
}

// Unregister removes every planned identity, tolerating absent entries.
// Used by the setup CLI's uninstall path.
func (r *Reconciler) Unregister(ctx context.Context, planned []schedule.Task) (Summary, error) {
	if err := r.preflight(ctx); err != nil {
		return Summary{}, err
	}

	sum := Summary{Results: make([]Result, 0, len(planned))}
	for _, task := range planned {
		res := Result{ID: task.ID, Slot: task.Slot}
		octx, cancel := context.WithTimeout(ctx, opTimeout)
		err := r.sched.Unregister(octx, task.ID)
		cancel()
		switch {
		case err == nil:
			res.Outcome = OutcomeRemoved
			sum.Removed++
			r.log.Info("registration removed", logx.String("task", task.ID))
		case errors.Is(err, ErrNotFound):
			res.Outcome = OutcomeAbsent // nothing existed; already converged
			sum.Absent++
			r.log.Debug("no registration to remove", logx.String("task", task.ID))
		default:
			res.Outcome = OutcomeFailed
			res.Err = fmt.Errorf("unregister %s: %w", task.ID, err)
			sum.Failed++
			r.log.Error("unregister failed", logx.String("task", task.ID), logx.Err(err))
		}
		sum.Results = append(sum.Results, res)
	}
	return sum, nil
}
