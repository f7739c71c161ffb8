package schedule

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidTime is wrapped by every time-of-day parse failure so callers can
// classify malformed input with errors.Is.
var ErrInvalidTime = fmt.Errorf("invalid time")

// TimeSlot is a wall-clock time-of-day (hour/minute) in the configured
// reference timezone. Slots come from configuration, never from runtime clock
// reads.
type TimeSlot struct {
	Hour   int
	Minute int
}

// String renders the slot as "HH:MM".
func (s TimeSlot) String() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Key renders the slot as a separator-free "HHMM" string. Zero-padding keeps
// the slot -> key mapping injective over the full 24x60 domain.
func (s TimeSlot) Key() string {
	return fmt.Sprintf("%02d%02d", s.Hour, s.Minute)
}

// Task pairs a derived task identity with the slot it fires at.
type Task struct {
	ID   string
	Slot TimeSlot
}

var reTimeOfDay = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*$`)

// ParseTimeOfDay parses a strict "HH:MM" time-of-day.
// Hours are 0..23 and minutes 0..59; anything else fails with ErrInvalidTime.
func ParseTimeOfDay(raw string) (TimeSlot, error) {
	m := reTimeOfDay.FindStringSubmatch(raw)
	if len(m) != 3 {
		return TimeSlot{}, fmt.Errorf("%w: %q (use HH:MM like '06:00')", ErrInvalidTime, raw)
	}
	var hh int
	for i := 0; i < len(m[1]); i++ {
		hh = hh*10 + int(m[1][i]-'0')
	}
	mm := int(m[2][0]-'0')*10 + int(m[2][1]-'0')
	if hh > 23 {
		return TimeSlot{}, fmt.Errorf("%w: %q (hour must be 0..23)", ErrInvalidTime, raw)
	}
	if mm > 59 {
		return TimeSlot{}, fmt.Errorf("%w: %q (minute must be 0..59)", ErrInvalidTime, raw)
	}
	return TimeSlot{Hour: hh, Minute: mm}, nil
}

// TaskID derives the deterministic identity for one slot under baseName,
// e.g. ("PriceMonitor", 06:00) -> "PriceMonitor_0600".
func TaskID(baseName string, slot TimeSlot) string {
	return baseName + "_" + slot.Key()
}

// Plan computes the planned task set for baseName at the given times-of-day.
//
// The result is deterministic: duplicate times collapse to one task, and tasks
// are ordered by slot. Re-running Plan on the same input always yields the
// same identities, which is what makes reconciliation idempotent.
func Plan(baseName string, timesOfDay []string) ([]Task, error) {
	baseName = strings.TrimSpace(baseName)
	if baseName == "" {
		return nil, fmt.Errorf("base task name required")
	}
	if len(timesOfDay) == 0 {
		return nil, fmt.Errorf("at least one time-of-day required")
	}

	seen := make(map[TimeSlot]struct{}, len(timesOfDay))
	slots := make([]TimeSlot, 0, len(timesOfDay))
	for _, raw := range timesOfDay {
		slot, err := ParseTimeOfDay(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[slot]; dup {
			continue
		}
		seen[slot] = struct{}{}
		slots = append(slots, slot)
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Hour != slots[j].Hour {
			return slots[i].Hour < slots[j].Hour
		}
		return slots[i].Minute < slots[j].Minute
	})

	tasks := make([]Task, 0, len(slots))
	for _, slot := range slots {
		tasks = append(tasks, Task{ID: TaskID(baseName, slot), Slot: slot})
	}
	return tasks, nil
}
