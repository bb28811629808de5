package utils

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/picogrid/reionsim/pkg/config"
)

// InputsSuffix marks inputs files picked up by DiscoverInputFiles.
const InputsSuffix = ".inputs.yaml"

// InputFileInfo describes a discovered inputs file
type InputFileInfo struct {
	Path string
	// ID is the input set ID; zero when Err is set.
	ID  uuid.UUID
	Err error
}

// DiscoverInputFiles finds every *.inputs.yaml below root and builds its
// input set. Files that fail to load are reported with Err rather than
// stopping the scan. Hidden directories are skipped. An empty root
// selects the working directory.
func DiscoverInputFiles(root string) ([]InputFileInfo, error) {
	if root == "" {
		root = "."
	}

	var files []InputFileInfo
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(d.Name(), InputsSuffix) {
			return nil
		}

		info := InputFileInfo{Path: path}
		set, err := config.LoadInputs(path)
		if err != nil {
			info.Err = err
		} else {
			info.ID = set.ID()
		}
		files = append(files, info)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for inputs files: %w", err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, nil
}
