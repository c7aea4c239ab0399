// internal/output/stitch_test.go - Unit tests for mosaic assembly
package output

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func writeStyledTile(t *testing.T, dir string, col, row int, c color.Color, size int) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, c)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("%d_%d_map.jpeg", col, row))
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
}

func TestStitch(t *testing.T) {
	dir := t.TempDir()

	// 2x2 grid with the south-east tile missing.
	writeStyledTile(t, dir, 10, 20, color.RGBA{R: 255, A: 255}, 8)
	writeStyledTile(t, dir, 11, 20, color.RGBA{G: 255, A: 255}, 8)
	writeStyledTile(t, dir, 10, 21, color.RGBA{B: 255, A: 255}, 8)

	outputPath := filepath.Join(t.TempDir(), "mosaic.jpeg")
	result, err := NewStitcher(dir, 90).Stitch(outputPath)
	if err != nil {
		t.Fatalf("Stitch failed: %v", err)
	}

	if result.Width != 16 || result.Height != 16 {
		t.Errorf("Expected 16x16 mosaic, got %dx%d", result.Width, result.Height)
	}
	if result.Pasted != 3 {
		t.Errorf("Expected 3 pasted tiles, got %d", result.Pasted)
	}
	if len(result.Missing) != 1 {
		t.Fatalf("Expected 1 missing tile, got %d", len(result.Missing))
	}
	if result.Missing[0].Col != 11 || result.Missing[0].Row != 21 {
		t.Errorf("Expected missing tile 11_21, got %s", result.Missing[0].Name())
	}

	f, err := os.Open(outputPath)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	mosaic, err := jpeg.Decode(f)
	if err != nil {
		t.Fatalf("Mosaic does not decode as JPEG: %v", err)
	}
	if mosaic.Bounds().Dx() != 16 || mosaic.Bounds().Dy() != 16 {
		t.Errorf("Mosaic image is %dx%d, expected 16x16",
			mosaic.Bounds().Dx(), mosaic.Bounds().Dy())
	}

	// The missing quadrant stays white.
	r, g, b, _ := mosaic.At(12, 12).RGBA()
	if r < 0xe000 || g < 0xe000 || b < 0xe000 {
		t.Errorf("Expected white background at missing tile, got (%d, %d, %d)", r, g, b)
	}

	// The north-west quadrant carries the red tile.
	r, g, b, _ = mosaic.At(4, 4).RGBA()
	if r < 0xc000 || g > 0x4000 || b > 0x4000 {
		t.Errorf("Expected red tile in north-west quadrant, got (%d, %d, %d)", r, g, b)
	}
}

func TestStitchIgnoresUnrelatedFiles(t *testing.T) {
	dir := t.TempDir()
	writeStyledTile(t, dir, 5, 5, color.RGBA{R: 255, A: 255}, 4)

	// Source tiles and other files must not enter the mosaic.
	for _, name := range []string{"5_5.jpeg", "report.json", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	result, err := NewStitcher(dir, 90).Stitch(filepath.Join(t.TempDir(), "mosaic.jpeg"))
	if err != nil {
		t.Fatalf("Stitch failed: %v", err)
	}
	if result.Pasted != 1 {
		t.Errorf("Expected 1 pasted tile, got %d", result.Pasted)
	}
	if result.Width != 4 || result.Height != 4 {
		t.Errorf("Expected 4x4 mosaic, got %dx%d", result.Width, result.Height)
	}
}

func TestStitchEmptyDirectory(t *testing.T) {
	if _, err := NewStitcher(t.TempDir(), 90).Stitch("unused.jpeg"); err == nil {
		t.Error("Expected error for directory without styled tiles, got nil")
	}
}
