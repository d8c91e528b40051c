package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorageSaveAndOpen(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("reports/gaps.csv", []byte("Department,Gap\n"))
	require.NoError(t, err)
	require.True(t, filepath.IsAbs(path))

	file, err := store.Open(path)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	require.Equal(t, "Department,Gap\n", string(data))
}

func TestLocalStorageSaveStream(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	content := "certificate bytes"
	path, written, err := store.SaveStream(filepath.Join("req-1", "doc.pdf"), strings.NewReader(content))
	require.NoError(t, err)
	require.Equal(t, int64(len(content)), written)
	require.FileExists(t, path)
}

func TestLocalStorageDelete(t *testing.T) {
	store, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	path, err := store.Save("doc.pdf", []byte("data"))
	require.NoError(t, err)
	require.NoError(t, store.Delete(path))
	_, statErr := os.Stat(path)
	require.True(t, os.IsNotExist(statErr))

	// deleting a missing file is not an error
	require.NoError(t, store.Delete(path))
}
