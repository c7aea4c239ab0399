// internal/output/writer.go - Per-tile image persistence
package output

import (
	"fmt"
	"os"
	"path/filepath"

	"aerial-to-topo/internal"
	"aerial-to-topo/pkg/tilegrid"
)

// Writer persists the source and styled images of one tile
type Writer interface {
	WriteSource(address tilegrid.Address, data []byte) (string, error)
	WriteStyled(address tilegrid.Address, data []byte) (string, error)
}

// TileWriter writes tiles into a flat output directory using the
// {col}_{row}.jpeg / {col}_{row}_map.jpeg naming convention, which is
// collision-free per address and reproducible across runs.
type TileWriter struct {
	baseDir    string
	extension  string
	keepSource bool
}

// NewTileWriter creates a writer rooted at baseDir, creating it if needed
func NewTileWriter(baseDir, extension string, keepSource bool) (*TileWriter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, internal.NewError(internal.ErrorCodeFileSystem, "failed to create output directory", err)
	}

	return &TileWriter{
		baseDir:    baseDir,
		extension:  extension,
		keepSource: keepSource,
	}, nil
}

// WriteSource persists the fetched aerial image for a tile. Writing the
// source can be disabled by configuration; the call is then a no-op.
func (w *TileWriter) WriteSource(address tilegrid.Address, data []byte) (string, error) {
	if !w.keepSource {
		return "", nil
	}
	return w.write(fmt.Sprintf("%s.%s", address.Name(), w.extension), data)
}

// WriteStyled persists the generated map image for a tile
func (w *TileWriter) WriteStyled(address tilegrid.Address, data []byte) (string, error) {
	return w.write(fmt.Sprintf("%s_map.%s", address.Name(), w.extension), data)
}

func (w *TileWriter) write(name string, data []byte) (string, error) {
	path := filepath.Join(w.baseDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", internal.NewError(internal.ErrorCodeFileSystem, "failed to write "+name, err)
	}
	return path, nil
}
