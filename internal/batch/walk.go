package batch

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"rock-density/internal/pipeline"
)

// IsCandidate reports whether path is a profile photograph the batch should
// process: a .jpg in any letter case that is not a mask written by a previous run.
func IsCandidate(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".jpg") {
		return false
	}
	return !pipeline.IsMaskPath(path)
}

// Walk collects candidate photographs under root, recursively, sorted by path.
func Walk(root string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if IsCandidate(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", root, err)
	}

	sort.Strings(files)
	return files, nil
}
