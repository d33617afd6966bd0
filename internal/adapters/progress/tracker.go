// Package progress renders pipeline progress to a terminal and absorbs the
// retry log lines emitted by sender workers.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker implements ports.ProgressSink with an in-place progress line.
// It is safe for concurrent use by multiple sender workers.
type Tracker struct {
	mu      sync.Mutex
	w       io.Writer
	total   int
	current int
	start   time.Time
}

// NewTracker creates a tracker writing to w (typically os.Stderr).
func NewTracker(w io.Writer) *Tracker {
	return &Tracker{w: w}
}

// Start resets the tracker for a new input. total may be zero when the
// number of batches cannot be estimated (stdin).
func (t *Tracker) Start(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = total
	t.current = 0
	t.start = time.Now()
	t.render()
}

// Add records n delivered or skipped batches.
func (t *Tracker) Add(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current += n
	t.render()
}

// Println writes a log line, then redraws the progress line under it.
func (t *Tracker) Println(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.w, "\r\033[K%s\n", msg)
	t.render()
}

// Finish completes the progress line with a newline.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.render()
	fmt.Fprintln(t.w)
}

// render prints the current progress. Must be called with the lock held.
func (t *Tracker) render() {
	elapsed := time.Since(t.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(t.current) / elapsed
	}
	if t.total > 0 {
		pct := float64(t.current) / float64(t.total) * 100.0
		fmt.Fprintf(t.w, "\rbatches %d/~%d (%.1f%%) - %.1f batches/s", t.current, t.total, pct, rate)
		return
	}
	fmt.Fprintf(t.w, "\rbatches %d - %.1f batches/s", t.current, rate)
}
