// Package progress provides progress display for sshfan runs.
package progress

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Tracker tracks and displays session completion for one run. It draws to
// stderr so the output stream contract on stdout stays clean.
type Tracker struct {
	total     int
	completed int
	failed    int
	startTime time.Time
	mu        sync.Mutex
	writer    io.Writer
	enabled   bool
}

// NewTracker creates a tracker for total sessions writing to w.
func NewTracker(total int, w io.Writer, enabled bool) *Tracker {
	return &Tracker{
		total:     total,
		startTime: time.Now(),
		writer:    w,
		enabled:   enabled,
	}
}

// Update records one finished session.
func (t *Tracker) Update(success bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if success {
		t.completed++
	} else {
		t.failed++
	}

	if t.enabled {
		t.draw()
	}
}

// Finish completes the progress display with a summary line.
func (t *Tracker) Finish() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return
	}

	elapsed := time.Since(t.startTime).Round(time.Millisecond)
	fmt.Fprintf(t.writer, "\rsessions: %d done, %d failed of %d in %v\n",
		t.completed, t.failed, t.total, elapsed)
}

func (t *Tracker) draw() {
	done := t.completed + t.failed
	percent := 0
	if t.total > 0 {
		percent = done * 100 / t.total
	}
	fmt.Fprintf(t.writer, "\rprogress: %d/%d (%d%%)", done, t.total, percent)
}
