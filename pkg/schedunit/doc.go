// Package schedunit is the systemd-timer backend for task registration.
//
// Each task identity maps to a <id>.service/<id>.timer unit pair under
// /etc/systemd/system. Timers carry the run policy (Persistent= for missed-run
// catch-up, WakeSystem=, ConditionACPower= on the service for battery
// tolerance) and fire daily at the slot's wall-clock time in the configured
// reference zone.
//
// Requires root and a system D-Bus connection; non-linux builds compile a
// stub that reports ErrUnsupported.
package schedunit
