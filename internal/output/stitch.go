// internal/output/stitch.go - Mosaic assembly from styled tiles
package output

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"aerial-to-topo/internal"
	"aerial-to-topo/pkg/tilegrid"
)

var styledTilePattern = regexp.MustCompile(`^(\d+)_(\d+)_map\.(?:jpeg|jpg)$`)

// Stitcher assembles styled tiles from an output directory into one mosaic
type Stitcher struct {
	inputDir    string
	jpegQuality int
}

// StitchResult describes the assembled mosaic
type StitchResult struct {
	Width, Height int
	Pasted        int
	Missing       []tilegrid.Address
}

// NewStitcher creates a stitcher reading from inputDir
func NewStitcher(inputDir string, jpegQuality int) *Stitcher {
	return &Stitcher{
		inputDir:    inputDir,
		jpegQuality: jpegQuality,
	}
}

// Stitch scans the input directory for {col}_{row}_map tiles, arranges them
// on the col/row grid and writes the combined JPEG. Missing grid positions
// stay white and are reported in the result.
func (s *Stitcher) Stitch(outputPath string) (*StitchResult, error) {
	tiles, err := s.scan()
	if err != nil {
		return nil, err
	}
	if len(tiles) == 0 {
		return nil, internal.NewError(internal.ErrorCodeNotFound,
			"no styled tiles found in "+s.inputDir, nil)
	}

	minCol, maxCol, minRow, maxRow := gridExtent(tiles)

	tileWidth, tileHeight, err := s.detectTileSize(tiles)
	if err != nil {
		return nil, err
	}

	width := (maxCol - minCol + 1) * tileWidth
	height := (maxRow - minRow + 1) * tileHeight

	mosaic := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(mosaic, mosaic.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	result := &StitchResult{Width: width, Height: height}

	for row := minRow; row <= maxRow; row++ {
		for col := minCol; col <= maxCol; col++ {
			path, ok := tiles[[2]int{col, row}]
			if !ok {
				result.Missing = append(result.Missing, tilegrid.Address{Col: col, Row: row})
				continue
			}

			img, err := loadJPEG(path)
			if err != nil {
				result.Missing = append(result.Missing, tilegrid.Address{Col: col, Row: row})
				continue
			}

			target := image.Rect(
				(col-minCol)*tileWidth,
				(row-minRow)*tileHeight,
				(col-minCol+1)*tileWidth,
				(row-minRow+1)*tileHeight,
			)
			draw.Draw(mosaic, target, img, img.Bounds().Min, draw.Src)
			result.Pasted++
		}
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to create mosaic file", err)
	}
	defer out.Close()

	if err := jpeg.Encode(out, mosaic, &jpeg.Options{Quality: s.jpegQuality}); err != nil {
		return nil, internal.NewError(internal.ErrorCodeProcessing, "failed to encode mosaic", err)
	}

	return result, nil
}

// scan maps (col, row) to the styled tile path for every match in the dir
func (s *Stitcher) scan() (map[[2]int]string, error) {
	entries, err := os.ReadDir(s.inputDir)
	if err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to read input directory", err)
	}

	tiles := make(map[[2]int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := styledTilePattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		col, _ := strconv.Atoi(m[1])
		row, _ := strconv.Atoi(m[2])
		tiles[[2]int{col, row}] = filepath.Join(s.inputDir, entry.Name())
	}

	return tiles, nil
}

// detectTileSize reads the first decodable tile to size the grid cells
func (s *Stitcher) detectTileSize(tiles map[[2]int]string) (int, int, error) {
	for _, path := range tiles {
		img, err := loadJPEG(path)
		if err != nil {
			continue
		}
		bounds := img.Bounds()
		return bounds.Dx(), bounds.Dy(), nil
	}
	return 0, 0, internal.NewError(internal.ErrorCodeProcessing,
		fmt.Sprintf("no decodable tiles in %s", s.inputDir), nil)
}

func loadJPEG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	return img, err
}

func gridExtent(tiles map[[2]int]string) (minCol, maxCol, minRow, maxRow int) {
	first := true
	for key := range tiles {
		col, row := key[0], key[1]
		if first {
			minCol, maxCol, minRow, maxRow = col, col, row, row
			first = false
			continue
		}
		minCol = min(minCol, col)
		maxCol = max(maxCol, col)
		minRow = min(minRow, row)
		maxRow = max(maxRow, row)
	}
	return
}
