package schedunit

import (
	"fmt"
	"regexp"
	"strings"

	"pricemon/internal/schedule"
	"pricemon/internal/taskreg"
)

// Unit file rendering is kept free of build tags so it can be tested on any
// platform; only the D-Bus plumbing is linux-only.

var reUnitID = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

func validateID(id string) error {
	if !reUnitID.MatchString(id) {
		return fmt.Errorf("task identity %q is not a valid unit name", id)
	}
	return nil
}

func serviceUnitName(id string) string { return id + ".service" }
func timerUnitName(id string) string   { return id + ".timer" }

// calendarSpec renders a daily OnCalendar expression for slot.
// The timezone suffix makes systemd resolve the wall-clock time in the
// reference zone rather than the host zone, so a host in a different zone
// (or one observing DST) still fires at the intended reference time.
func calendarSpec(slot schedule.TimeSlot, timezone string) string {
	spec := fmt.Sprintf("*-*-* %02d:%02d:00", slot.Hour, slot.Minute)
	if tz := strings.TrimSpace(timezone); tz != "" {
		spec += " " + tz
	}
	return spec
}

// execStartLine renders the ExecStart value with systemd-style quoting.
func execStartLine(action taskreg.ActionSpec) string {
	parts := make([]string, 0, 1+len(action.Args))
	parts = append(parts, quoteUnitArg(action.ExecPath))
	for _, a := range action.Args {
		parts = append(parts, quoteUnitArg(a))
	}
	return strings.Join(parts, " ")
}

func quoteUnitArg(s string) string {
	if s == "" {
		return `""`
	}
	if !strings.ContainsAny(s, " \t\"'\\") {
		return s
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		if r == '"' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}

// renderServiceUnit produces the oneshot .service unit a timer activates.
func renderServiceUnit(id string, action taskreg.ActionSpec, policy taskreg.RunPolicy, principal taskreg.Principal) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=pricemon price check (%s)\n", id)
	b.WriteString("Wants=network-online.target\n")
	b.WriteString("After=network-online.target\n")
	if !policy.RunOnBattery {
		// Only fire while on AC power.
		b.WriteString("ConditionACPower=true\n")
	}
	b.WriteString("\n[Service]\n")
	b.WriteString("Type=oneshot\n")
	fmt.Fprintf(&b, "ExecStart=%s\n", execStartLine(action))
	if action.WorkDir != "" {
		fmt.Fprintf(&b, "WorkingDirectory=%s\n", action.WorkDir)
	}
	if principal.User != "" {
		fmt.Fprintf(&b, "User=%s\n", principal.User)
	}
	if principal.Group != "" {
		fmt.Fprintf(&b, "Group=%s\n", principal.Group)
	}
	return b.String()
}

// renderTimerUnit produces the .timer unit firing daily at slot.
func renderTimerUnit(id string, slot schedule.TimeSlot, policy taskreg.RunPolicy, timezone string) string {
	var b strings.Builder
	b.WriteString("[Unit]\n")
	fmt.Fprintf(&b, "Description=pricemon timer for %s at %s\n", id, slot.String())
	b.WriteString("\n[Timer]\n")
	fmt.Fprintf(&b, "OnCalendar=%s\n", calendarSpec(slot, timezone))
	if policy.CatchUpMissedRun {
		// Fire as soon as possible if the scheduled start was missed.
		b.WriteString("Persistent=true\n")
	}
	if policy.WakeSystem {
		b.WriteString("WakeSystem=true\n")
	}
	fmt.Fprintf(&b, "Unit=%s\n", serviceUnitName(id))
	b.WriteString("\n[Install]\n")
	b.WriteString("WantedBy=timers.target\n")
	return b.String()
}
