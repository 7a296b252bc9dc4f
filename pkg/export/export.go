// Package export serializes partitioned collision models into the
// text formats the engine toolchain consumes: QC compile descriptions
// (one per part), VMF brush files, and template-based patches of an
// existing VMF map. All exports build their full output in memory and
// write atomically, so a failed export never leaves a truncated file
// behind.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrNoTemplate is returned by the map patch when the file holds no
// entity referencing the required _part_000 template model.
var ErrNoTemplate = errors.New("no template part entity found")

// writeFileAtomic writes data to path via a temp file in the same
// directory and a rename, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("export: create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export: close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("export: rename into %s: %w", path, err)
	}
	return nil
}
