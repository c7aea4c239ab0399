// internal/output/writer_test.go - Unit tests for tile persistence
package output

import (
	"os"
	"path/filepath"
	"testing"

	"aerial-to-topo/pkg/tilegrid"
)

func TestWriteSourceAndStyled(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewTileWriter(dir, "jpeg", true)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	address := tilegrid.Address{Col: 1234, Row: 567, Zoom: 26}

	sourcePath, err := writer.WriteSource(address, []byte("source"))
	if err != nil {
		t.Fatalf("WriteSource failed: %v", err)
	}
	if sourcePath != filepath.Join(dir, "1234_567.jpeg") {
		t.Errorf("Unexpected source path: %s", sourcePath)
	}

	styledPath, err := writer.WriteStyled(address, []byte("styled"))
	if err != nil {
		t.Fatalf("WriteStyled failed: %v", err)
	}
	if styledPath != filepath.Join(dir, "1234_567_map.jpeg") {
		t.Errorf("Unexpected styled path: %s", styledPath)
	}

	data, err := os.ReadFile(styledPath)
	if err != nil {
		t.Fatalf("Failed to read written tile: %v", err)
	}
	if string(data) != "styled" {
		t.Errorf("Unexpected tile content: %q", data)
	}
}

func TestWriteSourceDisabled(t *testing.T) {
	dir := t.TempDir()
	writer, err := NewTileWriter(dir, "jpeg", false)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	address := tilegrid.Address{Col: 1, Row: 2, Zoom: 26}
	path, err := writer.WriteSource(address, []byte("source"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if path != "" {
		t.Errorf("Expected empty path when source keeping is disabled, got %s", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty directory, found %d entries", len(entries))
	}
}

func TestNewTileWriterCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tiles")
	if _, err := NewTileWriter(dir, "jpeg", true); err != nil {
		t.Fatalf("Expected directory creation, got %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("Output directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Output path is not a directory")
	}
}
