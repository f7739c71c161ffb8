package schedunit

import (
	"strings"
	"testing"

	"pricemon/internal/schedule"
	"pricemon/internal/taskreg"
)

func TestCalendarSpec(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		slot schedule.TimeSlot
		tz   string
		want string
	}{
		{name: "plain", slot: schedule.TimeSlot{Hour: 6}, want: "*-*-* 06:00:00"},
		{name: "midnight", slot: schedule.TimeSlot{}, want: "*-*-* 00:00:00"},
		{name: "zoned", slot: schedule.TimeSlot{Hour: 18, Minute: 30}, tz: "America/Sao_Paulo", want: "*-*-* 18:30:00 America/Sao_Paulo"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := calendarSpec(tt.slot, tt.tz); got != tt.want {
				t.Fatalf("calendarSpec = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	t.Parallel()
	for _, id := range []string{"PriceMonitor_0600", "job-1", "a.b_c"} {
		if err := validateID(id); err != nil {
			t.Fatalf("validateID(%q) error: %v", id, err)
		}
	}
	for _, id := range []string{"", "-leading", "has space", "semi;colon", "../escape"} {
		if err := validateID(id); err == nil {
			t.Fatalf("validateID(%q): expected error", id)
		}
	}
}

func TestQuoteUnitArg(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in, want string
	}{
		{"/usr/bin/pricemon", "/usr/bin/pricemon"},
		{"-once", "-once"},
		{"", `""`},
		{"/opt/my app/bin", `"/opt/my app/bin"`},
		{`say "hi"`, `"say \"hi\""`},
	}
	for _, tt := range tests {
		if got := quoteUnitArg(tt.in); got != tt.want {
			t.Fatalf("quoteUnitArg(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestRenderServiceUnit(t *testing.T) {
	t.Parallel()
	action := taskreg.ActionSpec{
		ExecPath: "/usr/local/bin/pricemon",
		Args:     []string{"-config", "/etc/pricemon/config.yaml", "-once"},
		WorkDir:  "/var/lib/pricemon",
	}
	got := renderServiceUnit("PriceMonitor_0600", action, taskreg.RunPolicy{}, taskreg.Principal{User: "pricemon"})

	for _, want := range []string{
		"Type=oneshot\n",
		"ExecStart=/usr/local/bin/pricemon -config /etc/pricemon/config.yaml -once\n",
		"WorkingDirectory=/var/lib/pricemon\n",
		"User=pricemon\n",
		"ConditionACPower=true\n",
		"After=network-online.target\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("service unit missing %q:\n%s", want, got)
		}
	}

	// RunOnBattery drops the AC power condition.
	got = renderServiceUnit("PriceMonitor_0600", action, taskreg.RunPolicy{RunOnBattery: true}, taskreg.Principal{})
	if strings.Contains(got, "ConditionACPower") {
		t.Fatalf("unexpected ConditionACPower with RunOnBattery:\n%s", got)
	}
}

func TestRenderTimerUnit(t *testing.T) {
	t.Parallel()
	slot := schedule.TimeSlot{Hour: 12}
	got := renderTimerUnit("PriceMonitor_1200", slot, taskreg.RunPolicy{CatchUpMissedRun: true, WakeSystem: true}, "America/Sao_Paulo")

	for _, want := range []string{
		"OnCalendar=*-*-* 12:00:00 America/Sao_Paulo\n",
		"Persistent=true\n",
		"WakeSystem=true\n",
		"Unit=PriceMonitor_1200.service\n",
		"WantedBy=timers.target\n",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("timer unit missing %q:\n%s", want, got)
		}
	}

	got = renderTimerUnit("PriceMonitor_1200", slot, taskreg.RunPolicy{}, "")
	if strings.Contains(got, "Persistent=") || strings.Contains(got, "WakeSystem=") {
		t.Fatalf("unexpected policy lines in default timer:\n%s", got)
	}
}
