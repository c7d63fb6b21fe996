// Package writer provides sinks for encoded asset bytes.
package writer

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink receives a complete encoded asset.
type Sink interface {
	WriteAsset(data []byte) error
}

// FileWriter writes asset bytes to a path atomically: the data goes to a
// temp file in the same directory, is synced and then renamed over Path.
type FileWriter struct {
	Path string
	// Mode is the permission of a newly created file. Default: 0o644
	Mode os.FileMode
	// FullSync requests F_FULLFSYNC on darwin. Ignored elsewhere.
	FullSync bool
}

// WriteAsset implements Sink.
func (w *FileWriter) WriteAsset(data []byte) error {
	dir := filepath.Dir(w.Path)
	tmp, err := os.CreateTemp(dir, ".reasset-tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmp != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	mode := w.Mode
	if mode == 0 {
		mode = 0o644
	}
	if err := tmp.Chmod(mode); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := syncFile(tmp, w.FullSync); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	tmp = nil

	if err := os.Rename(tmpPath, w.Path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
