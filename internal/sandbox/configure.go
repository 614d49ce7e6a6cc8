package sandbox

// The sandbox's configuration lifecycle is a two-state machine: a fresh
// sandbox is unconfigured, and exactly one first-run dialog moves it to
// configured. The transition is explicit here rather than an implicit side
// effect of Run, so test intent stays visible.

// SkipConfiguration marks the sandbox as configured without running the
// first-run dialog, for tests that must observe the dialog's absence.
func (e *Env) SkipConfiguration() {
	e.configured = true
}

// ForceDefaultConfiguration runs the first-run dialog with default answers
// (telemetry declined). Idempotent: repeated calls are no-ops.
func (e *Env) ForceDefaultConfiguration() {
	e.configure("")
}

// ForceTelemetryConfiguration runs the first-run dialog opting in to
// telemetry. Idempotent: repeated calls are no-ops.
func (e *Env) ForceTelemetryConfiguration() {
	e.configure("y")
}

// configure performs first-run setup by invoking the bare CLI with the
// given dialog answers, exactly once per sandbox.
func (e *Env) configure(answers string) {
	e.t.Helper()

	if e.configured {
		return
	}

	result, err := e.exec(e.cfg.OasisCmd, WithInput(answers), discardOutput())
	if err != nil {
		e.t.Fatalf("first-run configuration: %v", err)
	}
	if result.ExitCode != 0 {
		e.t.Fatalf("first-run configuration exited with status %d", result.ExitCode)
	}
	e.configured = true
}
