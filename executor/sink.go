package executor

// ProgressSink receives per-action progress, error and completion events from
// the executor. Implementations feed UIs (overlay, websocket broadcast);
// methods must not block for long since they run on the execution goroutine.
type ProgressSink interface {
	// Update reports the action currently running ("{icon} {type}") and the
	// percentage of the plan completed after it.
	Update(message string, percent int)

	// ShowError surfaces a non-fatal per-action failure or the safety abort.
	ShowError(message string)

	// ShowSuccess reports the terminal completion summary.
	ShowSuccess(message string)
}

// NopSink discards all progress events.
type NopSink struct{}

func (NopSink) Update(string, int) {}
func (NopSink) ShowError(string)   {}
func (NopSink) ShowSuccess(string) {}

// MultiSink fans events out to every sink in order.
type MultiSink []ProgressSink

func (m MultiSink) Update(message string, percent int) {
	for _, s := range m {
		s.Update(message, percent)
	}
}

func (m MultiSink) ShowError(message string) {
	for _, s := range m {
		s.ShowError(message)
	}
}

func (m MultiSink) ShowSuccess(message string) {
	for _, s := range m {
		s.ShowSuccess(message)
	}
}
