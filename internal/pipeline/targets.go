package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CollectTargets expands targets into SVG file paths. Files are taken as
// given; directories are walked for files with an .svg extension, in any
// case. Duplicates are dropped and the order is stable.
func CollectTargets(targets []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			files = append(files, clean)
		}
	}

	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target, err)
		}
		if !info.IsDir() {
			add(target)
			continue
		}
		err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.Type().IsRegular() && strings.EqualFold(filepath.Ext(path), ".svg") {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", target, err)
		}
	}
	return files, nil
}
