package trace

// MultiTracer fans out events to multiple tracers.
type MultiTracer struct {
	tracers []Tracer
}

// NewMultiTracer creates a new MultiTracer that emits to all provided tracers.
func NewMultiTracer(tracers ...Tracer) *MultiTracer {
	return &MultiTracer{tracers: tracers}
}

// Emit sends the event to all underlying tracers.
func (t *MultiTracer) Emit(ev Event) {
	for _, tr := range t.tracers {
		tr.Emit(ev)
	}
}

// Flush flushes all underlying tracers.
func (t *MultiTracer) Flush() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes all underlying tracers.
func (t *MultiTracer) Close() error {
	var firstErr error
	for _, tr := range t.tracers {
		if err := tr.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Enabled returns true if any underlying tracer is enabled.
func (t *MultiTracer) Enabled() bool {
	for _, tr := range t.tracers {
		if tr.Enabled() {
			return true
		}
	}
	return false
}
