package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pricemon/internal/config"
	"pricemon/internal/monitor"
	"pricemon/internal/notify"
	logx "pricemon/pkg/logx"
)

func main() {
	var (
		cfgPath   string
		once      bool
		testEmail bool
	)
	flag.StringVar(&cfgPath, "config", "./config.yaml", "path to config yaml")
	flag.BoolVar(&once, "once", false, "run one check and exit (scheduler mode)")
	flag.BoolVar(&testEmail, "test-email", false, "send a test alert and exit")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, cfgPath, once, testEmail); err != nil && ctx.Err() == nil {
		fmt.Println("fatal:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfgPath string, once, testEmail bool) error {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
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
	log = log.With(logx.String("comp", "worker"))

	mgr.SetLogger(log.With(logx.String("comp", "config")))
	mgr.SetValidator(func(_ context.Context, c *config.Config) error {
		return config.Validate(c)
	})

	if testEmail {
		notifier, err := notify.New(cfg.Email, log.With(logx.String("comp", "notify")))
		if err != nil {
			return err
		}
		if notifier == nil {
			return fmt.Errorf("email is not configured")
		}
		if err := notifier.SendTest(ctx); err != nil {
			return err
		}
		fmt.Println("test email sent to", cfg.Email.RecipientEmail)
		return nil
	}

	mon := monitor.New(mgr, log.With(logx.String("comp", "monitor")))

	if once {
		return mon.RunCheck(ctx)
	}

	// Long-running mode: watch the config for edits and fire checks at the
	// configured times until interrupted.
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		if err := mgr.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			log.Warn("config watch stopped", logx.Err(err))
		}
	}()

	err = mon.RunScheduled(ctx)
	if err != nil && ctx.Err() != nil {
		// normal shutdown
		return nil
	}
	return err
}
