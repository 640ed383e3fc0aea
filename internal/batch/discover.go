package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Files are the input files of one batch directory.
type Files struct {
	Alto []string
	Mets []string
}

// Discover walks a batch directory and collects ALTO and METS files by suffix.
// Paths are returned sorted.
func Discover(dir, altoSuffix, metsSuffix string) (*Files, error) {
	files := &Files{}

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		switch {
		case strings.HasSuffix(name, altoSuffix):
			files.Alto = append(files.Alto, path)
		case strings.HasSuffix(name, metsSuffix):
			files.Mets = append(files.Mets, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk batch %s: %w", dir, err)
	}

	sort.Strings(files.Alto)
	sort.Strings(files.Mets)
	return files, nil
}

// SourceID derives the item id from an ALTO file name.
func SourceID(path, altoSuffix string) string {
	return strings.TrimSuffix(filepath.Base(path), altoSuffix)
}

// ID is the batch identifier: the directory name.
func ID(dir string) string {
	return filepath.Base(filepath.Clean(dir))
}
