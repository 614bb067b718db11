// Package bench discovers QBF instances on disk for benchmark-mode runs
// (spec §6: "the benchmark driver that walks a directory and accumulates
// statistics"), in the same filepath.WalkDir style the teacher uses to
// enumerate its own DIMACS test fixtures.
package bench

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// ListInstances returns, in a stable sorted order, the QDIMACS instance
// files found anywhere in the file tree rooted at dir. Both plain and
// gzip-compressed instances are recognized, matching qdimacs.ParseFile's
// own ".gz" detection.
func ListInstances(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := strings.TrimSuffix(path, ".gz")
		if !strings.HasSuffix(name, ".qdimacs") && !strings.HasSuffix(name, ".cnf") {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
