// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package output writes the final document without ever leaving a partial
// file behind.
package output

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteAtomic writes data to path by staging it in a temporary file in the
// destination directory and renaming it into place. On any failure the
// temporary file is removed and the destination is untouched, so an
// interrupted run never leaves a half-written document.
func WriteAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temporary output in %s: %w", dir, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing output: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("moving output into place: %w", err)
	}
	return nil
}
