// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

// Package firmware loads firmware images and finds candidate image files.
//
// All file access goes through an afero.Fs so callers can substitute an
// in-memory filesystem.
package firmware

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/afero"
)

// Extension of firmware image files
const Extension = ".bin"

// DefaultSearchPaths are the directories searched for firmware images, in order
var DefaultSearchPaths = []string{"firmware", "../firmware", "."}

// ErrEmptyFile is returned when a firmware file contains no bytes
var ErrEmptyFile = errors.New("firmware file is empty")

// Load reads a whole firmware image from path
func Load(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("firmware file not found: %s: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read firmware file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}

	return data, nil
}

// File is a firmware image found on disk
type File struct {
	Path string
	Size int64
}

// Title implements list.Item
func (f File) Title() string { return filepath.Base(f.Path) }

// Description implements list.Item
func (f File) Description() string {
	return fmt.Sprintf("%s (%d bytes)", f.Path, f.Size)
}

// FilterValue implements list.Item
func (f File) FilterValue() string { return f.Path }

// Find returns the firmware images of the first search path that contains
// any. Later paths are not searched once one matches. Results are sorted.
func Find(fs afero.Fs, searchPaths []string) ([]File, error) {
	if len(searchPaths) == 0 {
		searchPaths = DefaultSearchPaths
	}

	for _, dir := range searchPaths {
		matches, err := afero.Glob(fs, filepath.Join(dir, "*"+Extension))
		if err != nil {
			return nil, fmt.Errorf("failed to search %s: %w", dir, err)
		}

		var files []File
		for _, path := range matches {
			info, err := fs.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}
			files = append(files, File{Path: path, Size: info.Size()})
		}

		if len(files) > 0 {
			sort.Slice(files, func(i, j int) bool {
				return files[i].Path < files[j].Path
			})
			return files, nil
		}
	}

	return nil, nil
}
