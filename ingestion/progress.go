// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ingestion

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker draws a single status line for one import pass. Every
// completed document redraws it in place.
type ProgressTracker struct {
	mu      sync.Mutex
	w       io.Writer
	label   string
	total   int
	done    int
	failed  int
	started time.Time
	running bool
}

// NewProgressTracker creates a tracker for a pass over total documents.
// An empty label defaults to "Import".
func NewProgressTracker(w io.Writer, label string, total int) *ProgressTracker {
	if label == "" {
		label = "Import"
	}
	return &ProgressTracker{w: w, label: label, total: total}
}

// Start resets the counters and the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done, p.failed = 0, 0
	p.started = time.Now()
	p.running = true
}

// Record counts one completed document. Calls before Start are ignored.
func (p *ProgressTracker) Record(ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running || p.done >= p.total {
		return
	}
	p.done++
	if !ok {
		p.failed++
	}
	p.draw()
}

// Finish draws the final line, ends it with a newline and returns the pass
// duration. It returns zero when the tracker was not started.
func (p *ProgressTracker) Finish() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	p.draw()
	fmt.Fprintln(p.w)
	p.running = false
	return time.Since(p.started)
}

// draw writes the status line. The caller holds mu.
func (p *ProgressTracker) draw() {
	pct := 100.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100
	}
	rate := 0.0
	if secs := time.Since(p.started).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	fmt.Fprintf(p.w, "\r%s: %d/%d (%.1f%%), %d failed - %.1f documents/s",
		p.label, p.done, p.total, pct, p.failed, rate)
}
