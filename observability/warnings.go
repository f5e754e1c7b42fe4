package observability

import "sync"

// WarningSink receives non-fatal authoring-quality diagnostics emitted while
// a publication is parsed. Implementations must tolerate concurrent calls.
type WarningSink interface {
	Warn(msg string, fields ...Field)
}

type NopSink struct{}

func (NopSink) Warn(string, ...Field) {}

// Warning is one recorded diagnostic.
type Warning struct {
	Message string
	Fields  []Field
}

// CollectingSink retains every warning for later inspection.
type CollectingSink struct {
	mu       sync.Mutex
	warnings []Warning
}

func (s *CollectingSink) Warn(msg string, fields ...Field) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warnings = append(s.warnings, Warning{Message: msg, Fields: fields})
}

func (s *CollectingSink) Warnings() []Warning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Warning, len(s.warnings))
	copy(out, s.warnings)
	return out
}

// LoggerSink forwards warnings to a Logger at Warn level.
type LoggerSink struct{ Logger Logger }

func (s LoggerSink) Warn(msg string, fields ...Field) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, fields...)
}
