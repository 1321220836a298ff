package status

import "sync"

// DiagSlot is a mutex-guarded last-error string. The native reference
// keeps one such slot per OS thread; Go has no thread-locals, so mantiskv
// keeps one slot per Database handle instead (see DESIGN.md). Set on
// every non-OK, non-NotFound, non-StoppedByCB outcome, cleared on OK and
// on the two soft outcomes.
type DiagSlot struct {
	mu  sync.Mutex
	msg string
}

// Record stores err's message if it represents a hard error, and clears
// the slot otherwise.
func (d *DiagSlot) Record(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		d.msg = ""
		return
	}
	if se, ok := err.(*Error); ok && !se.Status.IsError() {
		d.msg = ""
		return
	}
	d.msg = err.Error()
}

// Message returns the last recorded diagnostic string.
func (d *DiagSlot) Message() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.msg
}
