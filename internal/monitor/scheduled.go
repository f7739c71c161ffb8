package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"pricemon/internal/config"
	"pricemon/internal/schedule"
	logx "pricemon/pkg/logx"
)

// RunScheduled keeps the process alive and fires RunCheck at every configured
// time of day. Config updates published by the manager restart the cron with
// the new times and timezone. Blocks until ctx is cancelled.
func (m *Monitor) RunScheduled(ctx context.Context) error {
	cfg := m.mgr.Get()
	if cfg == nil {
		return fmt.Errorf("no config loaded")
	}

	c, err := m.startCron(ctx, cfg)
	if err != nil {
		return err
	}

	updates := m.mgr.Subscribe(4)
	defer m.mgr.Unsubscribe(updates)

	for {
		select {
		case <-ctx.Done():
			stopCron(c)
			return ctx.Err()
		case next, ok := <-updates:
			if !ok {
				stopCron(c)
				return nil
			}
			stopCron(c)
			c, err = m.startCron(ctx, next)
			if err != nil {
				return fmt.Errorf("apply config update: %w", err)
			}
			m.log.Info("schedule reloaded",
				logx.Int("times", len(next.Scheduling.Times)),
				logx.String("timezone", next.Scheduling.Timezone))
		}
	}
}

func (m *Monitor) startCron(ctx context.Context, cfg *config.Config) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone())
	if err != nil {
		return nil, fmt.Errorf("scheduling.timezone: %w", err)
	}

	c := cron.New(cron.WithLocation(loc))
	for _, raw := range cfg.Scheduling.Times {
		slot, err := schedule.ParseTimeOfDay(raw)
		if err != nil {
			return nil, fmt.Errorf("scheduling.times: %w", err)
		}
		spec := fmt.Sprintf("%d %d * * *", slot.Minute, slot.Hour)
		if _, err := c.AddFunc(spec, func() {
			runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
			defer cancel()
			if err := m.RunCheck(runCtx); err != nil {
				m.log.Error("scheduled check failed",
					logx.String("slot", slot.String()),
					logx.Err(err))
			}
		}); err != nil {
			return nil, fmt.Errorf("schedule %s: %w", slot, err)
		}
	}
	c.Start()
	m.log.Info("scheduler started",
		logx.Int("times", len(cfg.Scheduling.Times)),
		logx.String("timezone", loc.String()))
	return c, nil
}

func stopCron(c *cron.Cron) {
	if c == nil {
		return
	}
	<-c.Stop().Done()
}
