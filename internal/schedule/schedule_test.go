package schedule

import (
	"errors"
	"testing"
)

func TestParseTimeOfDay(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		raw  string
		want TimeSlot
	}{
		{name: "morning", raw: "06:00", want: TimeSlot{Hour: 6, Minute: 0}},
		{name: "midnight", raw: "00:00", want: TimeSlot{}},
		{name: "single digit hour", raw: "6:30", want: TimeSlot{Hour: 6, Minute: 30}},
		{name: "end of day", raw: "23:59", want: TimeSlot{Hour: 23, Minute: 59}},
		{name: "surrounding space", raw: " 12:15 ", want: TimeSlot{Hour: 12, Minute: 15}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.raw)
			if err != nil {
				t.Fatalf("ParseTimeOfDay(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseTimeOfDay(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "24:00", "12:60", "12", "12:5", "noon", "12:00:00", "-1:00"} {
		if _, err := ParseTimeOfDay(raw); err == nil {
			t.Fatalf("ParseTimeOfDay(%q): expected error", raw)
		} else if !errors.Is(err, ErrInvalidTime) {
			t.Fatalf("ParseTimeOfDay(%q): error %v does not wrap ErrInvalidTime", raw, err)
		}
	}
}

func TestTaskIDZeroPadding(t *testing.T) {
	t.Parallel()
	// "1:23" and "12:3x" style collisions must be impossible: the key is
	// always four digits.
	a := TaskID("Job", TimeSlot{Hour: 1, Minute: 23})
	b := TaskID("Job", TimeSlot{Hour: 12, Minute: 3})
	if a == b {
		t.Fatalf("identity collision: %s", a)
	}
	if a != "Job_0123" || b != "Job_1203" {
		t.Fatalf("unexpected identities: %s, %s", a, b)
	}
}

func TestPlan(t *testing.T) {
	t.Parallel()
	tasks, err := Plan("PriceMonitor", []string{"06:00", "12:00", "18:00", "00:00"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	want := []string{"PriceMonitor_0000", "PriceMonitor_0600", "PriceMonitor_1200", "PriceMonitor_1800"}
	if len(tasks) != len(want) {
		t.Fatalf("got %d tasks, want %d", len(tasks), len(want))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("tasks[%d].ID = %s, want %s", i, tasks[i].ID, id)
		}
	}
}

func TestPlanDeterministic(t *testing.T) {
	t.Parallel()
	// Same times in a different order, with duplicates, must yield the same set.
	a, err := Plan("PriceMonitor", []string{"18:00", "06:00", "12:00", "06:00"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	b, err := Plan("PriceMonitor", []string{"06:00", "12:00", "18:00"})
	if err != nil {
		t.Fatalf("Plan error: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("plans differ in size: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("plans differ at %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPlanInvalidInput(t *testing.T) {
	t.Parallel()
	if _, err := Plan("", []string{"06:00"}); err == nil {
		t.Fatal("expected error for empty base name")
	}
	if _, err := Plan("Job", nil); err == nil {
		t.Fatal("expected error for empty time list")
	}
	if _, err := Plan("Job", []string{"06:00", "25:00"}); err == nil {
		t.Fatal("expected error for out-of-range hour")
	}
}
