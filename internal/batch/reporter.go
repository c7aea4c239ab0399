// internal/batch/reporter.go - Console progress reporting
package batch

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ConsoleReporter prints a single-line progress indicator, rate limited to
// avoid flooding slow terminals.
type ConsoleReporter struct {
	w          io.Writer
	mutex      sync.Mutex
	lastUpdate time.Time
}

// NewConsoleReporter creates a reporter writing to w
func NewConsoleReporter(w io.Writer) *ConsoleReporter {
	return &ConsoleReporter{w: w}
}

// ReportTile reports per-tile progress
func (r *ConsoleReporter) ReportTile(job *Job, result *Result) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if time.Since(r.lastUpdate) < time.Second && result.Error == nil {
		return
	}

	if result.Error != nil {
		fmt.Fprintf(r.w, "\rtile %s failed: %v\n", result.Address.Name(), result.Error)
	}

	fmt.Fprintf(r.w, "\rProgress: %.1f%% (%d/%d tiles, %.2f tiles/sec)",
		job.Progress.Percent(), job.Progress.ProcessedTiles,
		job.Progress.TotalTiles, job.Progress.Throughput())

	r.lastUpdate = time.Now()
}

// ReportComplete reports the end of the run
func (r *ConsoleReporter) ReportComplete(job *Job) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	fmt.Fprintf(r.w, "\rCompleted: %d/%d tiles (%d failed)\n",
		job.Progress.ProcessedTiles, job.Progress.TotalTiles, job.Progress.FailedTiles)
}
