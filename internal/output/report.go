// internal/output/report.go - Run outcome reporting
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"aerial-to-topo/internal"
	"aerial-to-topo/pkg/tilegrid"
)

// TileOutcome records the result of processing one tile
type TileOutcome struct {
	Address    tilegrid.Address `json:"address"`
	SourcePath string           `json:"source_path,omitempty"`
	StyledPath string           `json:"styled_path,omitempty"`
	Duration   time.Duration    `json:"duration"`
	Error      string           `json:"error,omitempty"`
}

// Succeeded reports whether the tile was fully processed
func (o *TileOutcome) Succeeded() bool {
	return o.Error == ""
}

// Report is the complete outcome of one run: every tile with its result,
// in the resolver's row-major order.
type Report struct {
	JobID     string        `json:"job_id"`
	Zoom      int           `json:"zoom"`
	Outcomes  []TileOutcome `json:"tiles"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
}

// Succeeded returns the number of fully processed tiles
func (r *Report) Succeeded() int {
	count := 0
	for i := range r.Outcomes {
		if r.Outcomes[i].Succeeded() {
			count++
		}
	}
	return count
}

// Failed returns the number of tiles that ended in an error
func (r *Report) Failed() int {
	return len(r.Outcomes) - r.Succeeded()
}

// Render prints the per-tile outcome list and the summary
func (r *Report) Render(w io.Writer) {
	for i := range r.Outcomes {
		o := &r.Outcomes[i]
		if o.Succeeded() {
			fmt.Fprintf(w, "  %-12s ok      %v\n", o.Address.Name(), o.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(w, "  %-12s failed  %s\n", o.Address.Name(), o.Error)
		}
	}

	fmt.Fprintf(w, "Tiles: %d total, %d succeeded, %d failed\n",
		len(r.Outcomes), r.Succeeded(), r.Failed())
	fmt.Fprintf(w, "Duration: %v\n", r.EndTime.Sub(r.StartTime).Round(time.Millisecond))
}

// WriteJSON persists the report for later inspection
func (r *Report) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return internal.NewError(internal.ErrorCodeProcessing, "failed to serialize report", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return internal.NewError(internal.ErrorCodeFileSystem, "failed to write report", err)
	}
	return nil
}
