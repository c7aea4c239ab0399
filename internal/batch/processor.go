// internal/batch/processor.go - Worker pool over the tile sequence
package batch

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"aerial-to-topo/internal/output"
	"aerial-to-topo/internal/styler"
	"aerial-to-topo/internal/tile"
	"aerial-to-topo/pkg/tilegrid"
)

// URLBuilder derives the source resource URL for a tile address
type URLBuilder func(address tilegrid.Address) string

// Processor runs the fetch -> style -> persist pipeline for every tile of a
// job. Tiles are independent: one tile's failure is recorded in its Result
// and never aborts the others (unless FailFast cancels the run).
type Processor struct {
	fetcher  tile.Fetcher
	styler   styler.Styler
	writer   output.Writer
	reporter ProgressReporter
	buildURL URLBuilder
	prompt   string
}

// NewProcessor assembles a processor from its collaborators
func NewProcessor(fetcher tile.Fetcher, st styler.Styler, writer output.Writer,
	reporter ProgressReporter, buildURL URLBuilder, prompt string) *Processor {
	return &Processor{
		fetcher:  fetcher,
		styler:   st,
		writer:   writer,
		reporter: reporter,
		buildURL: buildURL,
		prompt:   prompt,
	}
}

// Process runs the job to completion and returns one Result per address,
// in the job's original (row-major) order.
func (p *Processor) Process(ctx context.Context, job *Job) ([]*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	workChan := make(chan tilegrid.Address)
	resultChan := make(chan *Result)

	var wg sync.WaitGroup
	concurrency := min(job.Config.Concurrency, len(job.Addresses))
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, workChan, resultChan)
		}()
	}

	// Feed addresses; stops early when the context is canceled.
	go func() {
		defer close(workChan)
		for _, address := range job.Addresses {
			select {
			case workChan <- address:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	order := make(map[tilegrid.Address]int, len(job.Addresses))
	for i, a := range job.Addresses {
		order[a] = i
	}

	var results []*Result
	for result := range resultChan {
		results = append(results, result)

		job.Progress.ProcessedTiles++
		if result.Error != nil {
			job.Progress.FailedTiles++
			if job.Config.FailFast {
				cancel()
			}
		} else {
			job.Progress.SuccessTiles++
		}

		if p.reporter != nil {
			p.reporter.ReportTile(job, result)
		}
	}

	sort.Slice(results, func(i, j int) bool {
		return order[results[i].Address] < order[results[j].Address]
	})

	if p.reporter != nil {
		p.reporter.ReportComplete(job)
	}

	if job.Config.FailFast && job.Progress.FailedTiles > 0 {
		return results, fmt.Errorf("run aborted after tile failure (%d/%d processed)",
			job.Progress.ProcessedTiles, job.Progress.TotalTiles)
	}

	return results, nil
}

// worker processes addresses until the channel drains or ctx is canceled
func (p *Processor) worker(ctx context.Context, workChan <-chan tilegrid.Address, resultChan chan<- *Result) {
	for address := range workChan {
		select {
		case <-ctx.Done():
			resultChan <- &Result{Address: address, Error: ctx.Err()}
			continue
		default:
		}

		resultChan <- p.processTile(ctx, address)
	}
}

// processTile runs one tile through fetch, style and persist
func (p *Processor) processTile(ctx context.Context, address tilegrid.Address) *Result {
	start := time.Now()
	result := &Result{Address: address}

	request := tile.NewRequest(address, p.buildURL(address))
	response, err := p.fetcher.FetchWithRetry(request)
	if err != nil {
		result.Error = fmt.Errorf("fetch failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	sourcePath, err := p.writer.WriteSource(address, response.Data)
	if err != nil {
		result.Error = fmt.Errorf("source write failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.SourcePath = sourcePath

	styled, err := p.styler.Style(ctx, response.Data, p.prompt)
	if err != nil {
		result.Error = fmt.Errorf("style transfer failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}

	styledPath, err := p.writer.WriteStyled(address, styled)
	if err != nil {
		result.Error = fmt.Errorf("styled write failed: %w", err)
		result.Duration = time.Since(start)
		return result
	}
	result.StyledPath = styledPath

	result.Duration = time.Since(start)
	return result
}

// BuildReport converts the ordered results into the run report
func BuildReport(job *Job, results []*Result, start, end time.Time) *output.Report {
	report := &output.Report{
		JobID:     job.ID,
		StartTime: start,
		EndTime:   end,
	}
	if len(job.Addresses) > 0 {
		report.Zoom = job.Addresses[0].Zoom
	}

	for _, result := range results {
		outcome := output.TileOutcome{
			Address:    result.Address,
			SourcePath: result.SourcePath,
			StyledPath: result.StyledPath,
			Duration:   result.Duration,
		}
		if result.Error != nil {
			outcome.Error = result.Error.Error()
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	return report
}
