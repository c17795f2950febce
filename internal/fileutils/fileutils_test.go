package fileutils_test

import (
	"os"
	"path/filepath"
	"testing"

	"fjacquet/spendcat/internal/fileutils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileAndDirectoryExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0600))

	tests := []struct {
		name   string
		path   string
		isFile bool
		isDir  bool
	}{
		{"regular file", file, true, false},
		{"directory", dir, false, true},
		{"missing", filepath.Join(dir, "missing"), false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isFile, fileutils.FileExists(tt.path))
			assert.Equal(t, tt.isDir, fileutils.DirectoryExists(tt.path))
		})
	}
}

func TestEnsureDirectoryExists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, fileutils.EnsureDirectoryExists(dir))
	assert.True(t, fileutils.DirectoryExists(dir))
	assert.NoError(t, fileutils.EnsureDirectoryExists(dir))
	assert.NoError(t, fileutils.EnsureDirectoryExists("."))
	assert.NoError(t, fileutils.EnsureDirectoryExists(""))
}

func TestWriteFile_CreatesParents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "out.yaml")
	require.NoError(t, fileutils.WriteFile(path, []byte("hello"), 0644))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestCreateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	f, err := fileutils.CreateFile(path)
	require.NoError(t, err)
	_, err = f.WriteString("a,b\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.True(t, fileutils.FileExists(path))
}

func TestCreateFile_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0600))

	_, err := fileutils.CreateFile(filepath.Join(blocker, "out.csv"))
	assert.Error(t, err)
}
