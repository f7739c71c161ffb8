package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pricemon/internal/config"
	"pricemon/internal/schedule"
	"pricemon/internal/taskreg"
	logx "pricemon/pkg/logx"
	"pricemon/pkg/schedunit"
)

func main() {
	var (
		cfgPath   string
		status    bool
		runNow    string
		uninstall bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml")
	flag.BoolVar(&status, "status", false, "show live registrations and exit")
	flag.StringVar(&runNow, "run-now", "", "trigger the HH:MM registration immediately and exit")
	flag.BoolVar(&uninstall, "uninstall", false, "remove every registration and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, status, runNow, uninstall); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, status bool, runNow string, uninstall bool) error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	if err := config.ValidateSetup(cfg); err != nil {
		return err
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	defer logSvc.Close()
	log = log.With(logx.String("comp", "setup"))

	planned, err := schedule.Plan(cfg.Setup.BaseName, cfg.Scheduling.Times)
	if err != nil {
		return err
	}

	sched, err := schedunit.New(ctx, schedunit.Options{
		UnitDir:  cfg.Setup.UnitDir,
		Timezone: cfg.Timezone(),
		Log:      log.With(logx.String("comp", "schedunit")),
	})
	if err != nil {
		return err
	}
	defer sched.Close()

	switch {
	case status:
		return showStatus(ctx, sched, cfg.Setup.BaseName)
	case runNow != "":
		return startNow(ctx, sched, cfg.Setup.BaseName, runNow)
	case uninstall:
		return removeAll(ctx, sched, log, planned)
	default:
		return install(ctx, sched, log, cfg, cfgPath, planned)
	}
}

// install converges the scheduler to the planned set: one timer per
// configured time of day, each invoking the worker in single-shot mode.
func install(ctx context.Context, sched taskreg.Scheduler, log logx.Logger, cfg *config.Config, cfgPath string, planned []schedule.Task) error {
	action, err := workerAction(cfg, cfgPath)
	if err != nil {
		return err
	}
	policy := taskreg.RunPolicy{
		RunOnBattery:     cfg.Setup.RunOnBattery,
		CatchUpMissedRun: cfg.Setup.CatchUpMissedRun,
		WakeSystem:       cfg.Setup.WakeSystem,
	}
	principal := taskreg.Principal{User: cfg.Setup.User, Group: cfg.Setup.Group}

	rec := taskreg.NewReconciler(sched, log)
	sum, err := rec.Reconcile(ctx, planned, action, policy, principal)
	if err != nil {
		return err
	}

	printResults(sum)
	fmt.Printf("done: %d registered, %d replaced, %d failed\n",
		sum.Registered, sum.Replaced, sum.Failed)
	if !sum.OK() {
		return fmt.Errorf("%d of %d registrations failed", sum.Failed, len(planned))
	}
	return nil
}

// workerAction builds the command line the scheduler runs. The single-shot
// flag and an absolute config path are appended here, not taken from config,
// so a registration can never start the long-running mode.
func workerAction(cfg *config.Config, cfgPath string) (taskreg.ActionSpec, error) {
	execPath, err := filepath.Abs(cfg.Setup.WorkerPath)
	if err != nil {
		return taskreg.ActionSpec{}, fmt.Errorf("setup.worker_path: %w", err)
	}
	absCfg, err := filepath.Abs(cfgPath)
	if err != nil {
		return taskreg.ActionSpec{}, fmt.Errorf("config path: %w", err)
	}

	args := append([]string{}, cfg.Setup.WorkerArgs...)
	args = append(args, "-config", absCfg, "-once")
	return taskreg.ActionSpec{
		ExecPath: execPath,
		Args:     args,
		WorkDir:  cfg.Setup.WorkDir,
	}, nil
}

func removeAll(ctx context.Context, sched taskreg.Scheduler, log logx.Logger, planned []schedule.Task) error {
	rec := taskreg.NewReconciler(sched, log)
	sum, err := rec.Unregister(ctx, planned)
	if err != nil {
		return err
	}

	printResults(sum)
	fmt.Printf("done: %d removed, %d already absent, %d failed\n",
		sum.Removed, sum.Absent, sum.Failed)
	if !sum.OK() {
		return fmt.Errorf("%d of %d removals failed", sum.Failed, len(planned))
	}
	return nil
}

func showStatus(ctx context.Context, sched taskreg.Scheduler, baseName string) error {
	regs, err := sched.Query(ctx, baseName+"_*")
	if err != nil {
		return err
	}
	if len(regs) == 0 {
		fmt.Println("no registrations found for", baseName)
		return nil
	}
	for _, r := range regs {
		line := fmt.Sprintf("%-24s %-16s", r.ID, r.State)
		if !r.NextRun.IsZero() {
			line += "  next " + r.NextRun.Format("2006-01-02 15:04")
		}
		if !r.LastRun.IsZero() {
			line += "  last " + r.LastRun.Format("2006-01-02 15:04")
		}
		fmt.Println(line)
	}
	return nil
}

func startNow(ctx context.Context, sched taskreg.Scheduler, baseName, at string) error {
	slot, err := schedule.ParseTimeOfDay(at)
	if err != nil {
		return err
	}
	id := schedule.TaskID(baseName, slot)
	if err := sched.StartNow(ctx, id); err != nil {
		if errors.Is(err, taskreg.ErrNotFound) {
			return fmt.Errorf("%s is not registered (run install first)", id)
		}
		return err
	}
	fmt.Println("started", id)
	return nil
}

func printResults(sum taskreg.Summary) {
	for _, r := range sum.Results {
		if r.Err != nil {
			fmt.Printf("  %-24s %s  %v\n", r.ID, r.Outcome, r.Err)
			continue
		}
		fmt.Printf("  %-24s %s\n", r.ID, r.Outcome)
	}
}
