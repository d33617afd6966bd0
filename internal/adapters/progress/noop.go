package progress

// Noop implements ports.ProgressSink by discarding all updates.
type Noop struct{}

// NewNoop creates a no-op progress sink.
func NewNoop() *Noop {
	return &Noop{}
}

// Start discards the estimate.
func (Noop) Start(total int) {}

// Add discards the increment.
func (Noop) Add(n int) {}

// Println discards the line.
func (Noop) Println(msg string) {}

// Finish does nothing.
func (Noop) Finish() {}
