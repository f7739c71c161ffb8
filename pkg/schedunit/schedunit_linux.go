//go:build linux

package schedunit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/dbus"

	"pricemon/internal/schedule"
	"pricemon/internal/taskreg"
	logx "pricemon/pkg/logx"
)

const defaultUnitDir = "/etc/systemd/system"

// Manager registers price-check runs as systemd timer units. It implements
// taskreg.Scheduler.
//
// One registration is a pair of units named after the task identity:
// <id>.service (oneshot worker invocation) and <id>.timer (daily OnCalendar
// trigger). Unit files live in UnitDir; systemd owns their lifecycle after
// enable, so registrations survive host reboots.
type Manager struct {
	mu   sync.Mutex
	conn *dbus.Conn

	unitDir  string
	timezone string
	log      logx.Logger
}

type Options struct {
	// UnitDir is where unit files are written. Default /etc/systemd/system.
	UnitDir string
	// Timezone is the IANA zone trigger times are expressed in.
	// Empty means the host zone.
	Timezone string
	Log      logx.Logger
}

// New connects to the system bus. A connection failure is reported as
// taskreg.ErrSchedulerUnavailable.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	conn, err := dbus.NewSystemConnectionContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", taskreg.ErrSchedulerUnavailable, err)
	}

	unitDir := opts.UnitDir
	if unitDir == "" {
		unitDir = defaultUnitDir
	}
	log := opts.Log
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Manager{conn: conn, unitDir: unitDir, timezone: opts.Timezone, log: log}, nil
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn != nil {
		m.conn.Close()
		m.conn = nil
	}
	return nil
}

func (m *Manager) connection() (*dbus.Conn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return nil, taskreg.ErrSchedulerUnavailable
	}
	return m.conn, nil
}

// Preflight verifies the process can manage system units: effective root and
// a live system bus. It performs no mutation.
func (m *Manager) Preflight(ctx context.Context) error {
	if os.Geteuid() != 0 {
		return fmt.Errorf("%w: run as root to manage %s", taskreg.ErrPrivilege, m.unitDir)
	}
	conn, err := m.connection()
	if err != nil {
		return err
	}
	// Cheap liveness probe; ListUnitsByPatterns with no match is free.
	if _, err := conn.ListUnitsByPatternsContext(ctx, nil, []string{"pricemon-preflight-probe.timer"}); err != nil {
		return fmt.Errorf("%w: %v", taskreg.ErrSchedulerUnavailable, err)
	}
	return nil
}

// Register writes the unit pair, reloads the daemon and enables + starts the
// timer. Callers are expected to have removed any prior registration first.
func (m *Manager) Register(ctx context.Context, id string, action taskreg.ActionSpec, slot schedule.TimeSlot, policy taskreg.RunPolicy, principal taskreg.Principal) error {
	if err := validateID(id); err != nil {
		return err
	}
	conn, err := m.connection()
	if err != nil {
		return err
	}

	svcPath := filepath.Join(m.unitDir, serviceUnitName(id))
	tmrPath := filepath.Join(m.unitDir, timerUnitName(id))

	if err := os.WriteFile(svcPath, []byte(renderServiceUnit(id, action, policy, principal)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", svcPath, err)
	}
	if err := os.WriteFile(tmrPath, []byte(renderTimerUnit(id, slot, policy, m.timezone)), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmrPath, err)
	}

	if err := conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("daemon-reload: %w", err)
	}
	if _, _, err := conn.EnableUnitFilesContext(ctx, []string{timerUnitName(id)}, false, true); err != nil {
		return fmt.Errorf("enable %s: %w", timerUnitName(id), err)
	}
	if _, err := conn.StartUnitContext(ctx, timerUnitName(id), "replace", nil); err != nil {
		return fmt.Errorf("start %s: %w", timerUnitName(id), err)
	}

	m.log.Debug("timer unit registered",
		logx.String("unit", timerUnitName(id)),
		logx.String("calendar", calendarSpec(slot, m.timezone)))
	return nil
}

// Unregister stops and disables the timer and removes both unit files.
// When nothing exists under id it returns taskreg.ErrNotFound.
func (m *Manager) Unregister(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	conn, err := m.connection()
	if err != nil {
		return err
	}

	existed := false

	if _, err := conn.StopUnitContext(ctx, timerUnitName(id), "replace", nil); err != nil {
		if !isNoSuchUnitErr(err) {
			return fmt.Errorf("stop %s: %w", timerUnitName(id), err)
		}
	} else {
		existed = true
	}
	if _, err := conn.DisableUnitFilesContext(ctx, []string{timerUnitName(id)}, false); err == nil {
		existed = true
	}

	for _, name := range []string{serviceUnitName(id), timerUnitName(id)} {
		path := filepath.Join(m.unitDir, name)
		switch err := os.Remove(path); {
		case err == nil:
			existed = true
		case os.IsNotExist(err):
			// fine
		default:
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	if !existed {
		return taskreg.ErrNotFound
	}

	if err := conn.ReloadContext(ctx); err != nil {
		return fmt.Errorf("daemon-reload: %w", err)
	}
	m.log.Debug("timer unit unregistered", logx.String("unit", timerUnitName(id)))
	return nil
}

// Query lists live timer registrations matching the identity glob.
func (m *Manager) Query(ctx context.Context, pattern string) ([]taskreg.Registration, error) {
	conn, err := m.connection()
	if err != nil {
		return nil, err
	}

	units, err := conn.ListUnitsByPatternsContext(ctx, nil, []string{pattern + ".timer"})
	if err != nil {
		return nil, fmt.Errorf("list timers %q: %w", pattern, err)
	}

	regs := make([]taskreg.Registration, 0, len(units))
	for _, u := range units {
		reg := taskreg.Registration{
			ID:    strings.TrimSuffix(u.Name, ".timer"),
			State: u.ActiveState + "/" + u.SubState,
		}
		props, perr := conn.GetUnitTypePropertiesContext(ctx, u.Name, "Timer")
		if perr == nil {
			reg.LastRun = usecTimestamp(props, "LastTriggerUSec")
			reg.NextRun = usecTimestamp(props, "NextElapseUSecRealtime")
		}
		regs = append(regs, reg)
	}
	return regs, nil
}

// StartNow fires the registered action immediately via its .service unit.
func (m *Manager) StartNow(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	conn, err := m.connection()
	if err != nil {
		return err
	}
	if _, err := conn.StartUnitContext(ctx, serviceUnitName(id), "replace", nil); err != nil {
		if isNoSuchUnitErr(err) {
			return fmt.Errorf("%s: %w", id, taskreg.ErrNotFound)
		}
		return fmt.Errorf("start %s: %w", serviceUnitName(id), err)
	}
	return nil
}

func isNoSuchUnitErr(err error) bool {
	if err == nil {
		return false
	}
	es := err.Error()
	// systemd returns org.freedesktop.systemd1.NoSuchUnit for missing units;
	// some versions phrase it as "not loaded" or "not-found".
	if strings.Contains(es, "NoSuchUnit") {
		return true
	}
	return strings.Contains(es, "not loaded") || strings.Contains(es, "not-found")
}

func usecTimestamp(props map[string]interface{}, key string) time.Time {
	if ts, ok := props[key].(uint64); ok && ts > 0 {
		// systemd timestamps are in microseconds since the Unix epoch
		return time.Unix(int64(ts/1_000_000), 0)
	}
	return time.Time{}
}
