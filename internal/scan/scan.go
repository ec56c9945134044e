// Package scan finds image files on disk and watches directories for changes.
package scan

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// LoggerFunc receives human-readable progress and error messages.
type LoggerFunc func(msg string)

// FileItem is an image file found by a scan.
type FileItem struct {
	Path string
}

// FileItems is a list of scanned files.
type FileItems []FileItem

// FileScannerImpl walks a directory tree and emits every file whose extension
// is in Extensions (lower case, with the dot). A nil map accepts everything.
type FileScannerImpl struct {
	Extensions map[string]bool
}

// Run scans dir in a background goroutine. The returned channel is closed when
// the walk finishes. Unreadable entries are reported to logger and skipped.
func (s *FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem, 64)
	go func() {
		defer close(out)
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if logger != nil {
					logger(fmt.Sprintf("skipping %s: %v", path, err))
				}
				if d != nil && d.IsDir() && path != dir {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() {
				if path != dir && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !s.accepts(path) {
				return nil
			}
			out <- FileItem{Path: path}
			return nil
		})
		if err != nil && logger != nil {
			logger(fmt.Sprintf("scanning %s: %v", dir, err))
		}
	}()
	return out
}

func (s *FileScannerImpl) accepts(path string) bool {
	if s.Extensions == nil {
		return true
	}
	return s.Extensions[strings.ToLower(filepath.Ext(path))]
}

// Collect drains a scan channel into a list sorted by path.
func Collect(ch <-chan FileItem) FileItems {
	var items FileItems
	for item := range ch {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Path < items[j].Path })
	return items
}
