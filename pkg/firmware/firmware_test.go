// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package firmware

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func TestLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "fw/V3.8.bin", []byte{1, 2, 3})

	data, err := Load(fs, "fw/V3.8.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, data)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(afero.NewMemMapFs(), "nope.bin")
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "firmware file not found")
}

func TestLoad_Empty(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "empty.bin", nil)

	_, err := Load(fs, "empty.bin")
	require.ErrorIs(t, err, ErrEmptyFile)
}

func TestFind_FirstMatchingPathWins(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "../firmware/b.bin", []byte{1})
	writeFile(t, fs, "../firmware/a.bin", []byte{1, 2})
	writeFile(t, fs, "../firmware/notes.txt", []byte("x"))
	writeFile(t, fs, "other.bin", []byte{1})

	files, err := Find(fs, []string{"firmware", "../firmware", "."})
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, filepath.Join("..", "firmware", "a.bin"), files[0].Path)
	assert.Equal(t, int64(2), files[0].Size)
	assert.Equal(t, filepath.Join("..", "firmware", "b.bin"), files[1].Path)
}

func TestFind_NoneFound(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "firmware/readme.md", []byte("x"))

	files, err := Find(fs, []string{"firmware"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFind_SkipsDirectories(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("firmware/old.bin", 0o755))
	writeFile(t, fs, "firmware/new.bin", []byte{1})

	files, err := Find(fs, []string{"firmware"})
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "new.bin", files[0].Title())
}

func TestFile_ListItem(t *testing.T) {
	f := File{Path: filepath.Join("firmware", "V3.8.bin"), Size: 4096}
	assert.Equal(t, "V3.8.bin", f.Title())
	assert.Equal(t, filepath.Join("firmware", "V3.8.bin")+" (4096 bytes)", f.Description())
	assert.Equal(t, f.Path, f.FilterValue())
}
