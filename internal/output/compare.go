// internal/output/compare.go - Source vs styled tile comparison
package output

import (
	"encoding/json"
	"fmt"
	"image"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"aerial-to-topo/internal"
	"aerial-to-topo/pkg/tilegrid"
)

var sourceTilePattern = regexp.MustCompile(`^(\d+)_(\d+)\.(?:jpeg|jpg)$`)

// SSIM stabilization constants for 8-bit dynamic range.
const (
	ssimC1 = (0.01 * 255) * (0.01 * 255)
	ssimC2 = (0.03 * 255) * (0.03 * 255)

	ssimWindow = 7
)

// DefaultSSIMThreshold separates a real style transfer from a passthrough.
// A styled tile scoring above it is structurally too close to its source.
const DefaultSSIMThreshold = 0.85

// PairResult is the comparison outcome for one source/styled tile pair
type PairResult struct {
	Address         tilegrid.Address `json:"address"`
	Original        string           `json:"original"`
	Styled          string           `json:"styled"`
	SSIM            float64          `json:"ssim_score"`
	ColorDifference float64          `json:"color_difference"`
	Transformed     bool             `json:"transformation_success"`
}

// ComparisonSummary aggregates a comparison run
type ComparisonSummary struct {
	TotalPairs  int     `json:"total_pairs"`
	Transformed int     `json:"successful_transformations"`
	TooSimilar  int     `json:"failed_transformations"`
	SuccessRate float64 `json:"success_rate"`
	Threshold   float64 `json:"ssim_threshold"`
	AverageSSIM float64 `json:"average_ssim"`
}

// ComparisonReport is the full outcome of comparing an output directory
type ComparisonReport struct {
	Summary ComparisonSummary  `json:"summary"`
	Pairs   []PairResult       `json:"tiles"`
	Missing []tilegrid.Address `json:"missing_styled,omitempty"`
}

// Comparer scores source tiles against their styled counterparts. A low
// structural similarity means the model actually transformed the image; a
// score above the threshold flags a styled tile that still looks like the
// aerial photo.
type Comparer struct {
	inputDir  string
	threshold float64
}

// NewComparer creates a comparer over inputDir
func NewComparer(inputDir string, threshold float64) *Comparer {
	return &Comparer{
		inputDir:  inputDir,
		threshold: threshold,
	}
}

// CompareAll scores every {col}_{row}.jpeg tile in the directory against its
// {col}_{row}_map.jpeg counterpart. Pairs without a styled tile are reported
// as missing, not failed.
func (c *Comparer) CompareAll() (*ComparisonReport, error) {
	entries, err := os.ReadDir(c.inputDir)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to read input directory", err)
	}

	report := &ComparisonReport{}
	report.Summary.Threshold = c.threshold

	var ssimTotal float64
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := sourceTilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		col, _ := strconv.Atoi(m[1])
		row, _ := strconv.Atoi(m[2])
		address := tilegrid.Address{Col: col, Row: row}

		originalPath := filepath.Join(c.inputDir, entry.Name())
		styledPath := filepath.Join(c.inputDir, fmt.Sprintf("%d_%d_map.jpeg", col, row))
		if _, err := os.Stat(styledPath); err != nil {
			report.Missing = append(report.Missing, address)
			continue
		}

		result, err := c.ComparePair(originalPath, styledPath)
		if err != nil {
			return nil, fmt.Errorf("failed to compare tile %s: %w", address.Name(), err)
		}
		result.Address = address

		report.Pairs = append(report.Pairs, *result)
		ssimTotal += result.SSIM
		if result.Transformed {
			report.Summary.Transformed++
		} else {
			report.Summary.TooSimilar++
		}
	}

	if len(report.Pairs) == 0 {
		return nil, internal.NewError(internal.ErrorCodeNotFound,
			"no tile pairs found in "+c.inputDir, nil)
	}

	report.Summary.TotalPairs = len(report.Pairs)
	report.Summary.SuccessRate = float64(report.Summary.Transformed) / float64(len(report.Pairs))
	report.Summary.AverageSSIM = ssimTotal / float64(len(report.Pairs))

	return report, nil
}

// ComparePair scores one source image against one styled image
func (c *Comparer) ComparePair(originalPath, styledPath string) (*PairResult, error) {
	original, err := loadJPEG(originalPath)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeProcessing, "failed to decode "+originalPath, err)
	}
	styled, err := loadJPEG(styledPath)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeProcessing, "failed to decode "+styledPath, err)
	}

	// The model may return a different resolution than the 256px source;
	// compare at the larger of the two.
	a, b := matchSizes(newRaster(original), newRaster(styled))

	score := structuralSimilarity(a.gray(), b.gray())

	return &PairResult{
		Original:        originalPath,
		Styled:          styledPath,
		SSIM:            score,
		ColorDifference: colorDifference(a, b),
		Transformed:     score < c.threshold,
	}, nil
}

// Render prints the per-pair scores and the run summary
func (r *ComparisonReport) Render(w io.Writer) {
	for i := range r.Pairs {
		p := &r.Pairs[i]
		status := "transformed"
		if !p.Transformed {
			status = "too similar"
		}
		fmt.Fprintf(w, "  %-12s ssim %.4f  color diff %6.2f  %s\n",
			p.Address.Name(), p.SSIM, p.ColorDifference, status)
	}
	for _, a := range r.Missing {
		fmt.Fprintf(w, "  %-12s no styled tile\n", a.Name())
	}

	fmt.Fprintf(w, "Pairs: %d total, %d transformed, %d too similar (threshold %.2f)\n",
		r.Summary.TotalPairs, r.Summary.Transformed, r.Summary.TooSimilar, r.Summary.Threshold)
	fmt.Fprintf(w, "Average SSIM: %.4f\n", r.Summary.AverageSSIM)
}

// WriteJSON persists the comparison report
func (r *ComparisonReport) WriteJSON(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return internal.NewError(internal.ErrorCodeProcessing, "failed to serialize comparison report", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return internal.NewError(internal.ErrorCodeFileSystem, "failed to write comparison report", err)
	}
	return nil
}

// WriteMarkdown writes a side-by-side inspection table with inline images
func (r *ComparisonReport) WriteMarkdown(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return internal.NewError(internal.ErrorCodeFileSystem, "failed to create markdown report", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# Aerial to Map Transformation Results\n\n")
	fmt.Fprintf(f, "| Aerial Photo | Generated Map | SSIM Score | Status |\n")
	fmt.Fprintf(f, "|:---:|:---:|:---:|:---|\n")

	for i := range r.Pairs {
		p := &r.Pairs[i]
		status := fmt.Sprintf("SUCCESS<br>SSIM: %.4f", p.SSIM)
		if !p.Transformed {
			status = fmt.Sprintf("FAILED<br>Too similar to input<br>SSIM: %.4f", p.SSIM)
		}
		fmt.Fprintf(f, "| <img src=%q width=\"300\"> | <img src=%q width=\"300\"> | %.4f | %s |\n",
			p.Original, p.Styled, p.SSIM, status)
	}

	fmt.Fprintf(f, "\n---\n\n### Legend\n")
	fmt.Fprintf(f, "- SUCCESS: image was transformed (SSIM below %.2f)\n", r.Summary.Threshold)
	fmt.Fprintf(f, "- FAILED: generated image too similar to the source\n")
	fmt.Fprintf(f, "- SSIM Score: structural similarity (0-1, higher = more similar)\n")

	return nil
}

// raster is an 8-bit RGB view of a decoded image
type raster struct {
	w, h int
	pix  []float64 // 3 channels per pixel, 0..255
}

func newRaster(img image.Image) *raster {
	bounds := img.Bounds()
	r := &raster{
		w:   bounds.Dx(),
		h:   bounds.Dy(),
		pix: make([]float64, bounds.Dx()*bounds.Dy()*3),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			r.pix[i] = float64(cr >> 8)
			r.pix[i+1] = float64(cg >> 8)
			r.pix[i+2] = float64(cb >> 8)
			i += 3
		}
	}
	return r
}

// gray collapses the channels to a per-pixel mean intensity
func (r *raster) gray() *grayRaster {
	g := &grayRaster{w: r.w, h: r.h, pix: make([]float64, r.w*r.h)}
	for i := 0; i < len(g.pix); i++ {
		g.pix[i] = (r.pix[i*3] + r.pix[i*3+1] + r.pix[i*3+2]) / 3
	}
	return g
}

// resize scales to the target size with nearest-neighbor sampling. The
// metric compares structure, not edges, so resampling quality is immaterial.
func (r *raster) resize(w, h int) *raster {
	if r.w == w && r.h == h {
		return r
	}

	out := &raster{w: w, h: h, pix: make([]float64, w*h*3)}
	for y := 0; y < h; y++ {
		sy := y * r.h / h
		for x := 0; x < w; x++ {
			sx := x * r.w / w
			src := (sy*r.w + sx) * 3
			dst := (y*w + x) * 3
			out.pix[dst] = r.pix[src]
			out.pix[dst+1] = r.pix[src+1]
			out.pix[dst+2] = r.pix[src+2]
		}
	}
	return out
}

// matchSizes resizes both rasters to the larger of the two dimensions
func matchSizes(a, b *raster) (*raster, *raster) {
	w := max(a.w, b.w)
	h := max(a.h, b.h)
	return a.resize(w, h), b.resize(w, h)
}

// colorDifference is the mean absolute per-channel difference, 0..255
func colorDifference(a, b *raster) float64 {
	var sum float64
	for i := range a.pix {
		sum += math.Abs(a.pix[i] - b.pix[i])
	}
	return sum / float64(len(a.pix))
}

type grayRaster struct {
	w, h int
	pix  []float64
}

// structuralSimilarity computes the mean SSIM over sliding square windows.
// Images smaller than one window are scored with a single global window.
func structuralSimilarity(a, b *grayRaster) float64 {
	win := ssimWindow
	if a.w < win || a.h < win {
		win = min(a.w, a.h)
	}

	var total float64
	var windows int
	for y := 0; y+win <= a.h; y++ {
		for x := 0; x+win <= a.w; x++ {
			total += windowSSIM(a, b, x, y, win)
			windows++
		}
	}
	if windows == 0 {
		return 0
	}
	return total / float64(windows)
}

func windowSSIM(a, b *grayRaster, x0, y0, win int) float64 {
	n := float64(win * win)

	var sumA, sumB float64
	for y := y0; y < y0+win; y++ {
		row := y * a.w
		for x := x0; x < x0+win; x++ {
			sumA += a.pix[row+x]
			sumB += b.pix[row+x]
		}
	}
	meanA := sumA / n
	meanB := sumB / n

	var varA, varB, cov float64
	for y := y0; y < y0+win; y++ {
		row := y * a.w
		for x := x0; x < x0+win; x++ {
			da := a.pix[row+x] - meanA
			db := b.pix[row+x] - meanB
			varA += da * da
			varB += db * db
			cov += da * db
		}
	}
	// Unbiased normalization, matching the conventional estimator.
	if n > 1 {
		varA /= n - 1
		varB /= n - 1
		cov /= n - 1
	}

	return ((2*meanA*meanB + ssimC1) * (2*cov + ssimC2)) /
		((meanA*meanA + meanB*meanB + ssimC1) * (varA + varB + ssimC2))
}
