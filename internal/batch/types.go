// internal/batch/types.go - Per-tile processing types
package batch

import (
	"time"

	"github.com/google/uuid"

	"aerial-to-topo/pkg/tilegrid"
)

// Job represents one processing run over a resolved tile grid
type Job struct {
	ID        string
	Addresses []tilegrid.Address
	Config    *JobConfig
	Progress  *Progress
	CreatedAt time.Time
}

// JobConfig contains configuration for a processing run
type JobConfig struct {
	Concurrency int
	Timeout     time.Duration
	FailFast    bool
}

// Progress tracks a running job. Counters are only mutated by the
// processor's collector goroutine; readers take the snapshot methods.
type Progress struct {
	TotalTiles     int64
	ProcessedTiles int64
	SuccessTiles   int64
	FailedTiles    int64
	StartTime      time.Time
}

// Result is the outcome of one tile's processing
type Result struct {
	Address    tilegrid.Address
	SourcePath string
	StyledPath string
	Duration   time.Duration
	Attempts   int
	Error      error
}

// ProgressReporter receives progress callbacks during a run
type ProgressReporter interface {
	ReportTile(job *Job, result *Result)
	ReportComplete(job *Job)
}

// NewJob creates a job with a fresh ID over the given address sequence
func NewJob(addresses []tilegrid.Address, config *JobConfig) *Job {
	return &Job{
		ID:        uuid.NewString(),
		Addresses: addresses,
		Config:    config,
		Progress: &Progress{
			TotalTiles: int64(len(addresses)),
			StartTime:  time.Now(),
		},
		CreatedAt: time.Now(),
	}
}

// Percent returns the completion percentage
func (p *Progress) Percent() float64 {
	if p.TotalTiles == 0 {
		return 0
	}
	return float64(p.ProcessedTiles) / float64(p.TotalTiles) * 100
}

// Throughput returns tiles per second since the job started
func (p *Progress) Throughput() float64 {
	elapsed := time.Since(p.StartTime).Seconds()
	if elapsed <= 0 || p.ProcessedTiles == 0 {
		return 0
	}
	return float64(p.ProcessedTiles) / elapsed
}
