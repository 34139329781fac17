package fs

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Walker collects the Python files of a directory tree, filtered by
// include/exclude glob patterns.
type Walker struct {
	includes  []string
	excludes  []string
	recursive bool
}

func NewWalker(includes, excludes []string, recursive bool) *Walker {
	if len(includes) == 0 {
		includes = []string{"**/*.py"}
	}
	return &Walker{
		includes:  includes,
		excludes:  excludes,
		recursive: recursive,
	}
}

func (w *Walker) Walk(root string) ([]string, error) {
	var files []string

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path == root {
				return nil
			}
			if !w.recursive || w.shouldExclude(relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, path)
		}

		return nil
	})

	return files, err
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
		// Non-recursive walks compare against the bare pattern too.
		if !w.recursive {
			matched, err = doublestar.Match(filepath.Base(pattern), path)
			if err == nil && matched {
				return true
			}
		}
	}
	return false
}

func (w *Walker) shouldExclude(path string) bool {
	for _, pattern := range w.excludes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
