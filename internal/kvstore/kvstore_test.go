package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	var out sample
	found, err := Load(filepath.Join(dir, "missing.json"), &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	require.NoError(t, writeRaw(path, "{not json"))

	var out sample
	found, err := Load(path, &out)
	require.NoError(t, err)
	require.False(t, found)
}

func TestSaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "data.json")

	in := sample{Name: "a", Count: 3}
	require.NoError(t, Save(path, &in))

	var out sample
	found, err := Load(path, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, in, out)
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, Save(path, &sample{Name: "first", Count: 1}))
	require.NoError(t, Save(path, &sample{Name: "second", Count: 2}))

	var out sample
	found, err := Load(path, &out)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, sample{Name: "second", Count: 2}, out)

	// No leftover temp files in the directory.
	entries, err := listDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestSaveBackupPreservesPriorContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.json")

	require.NoError(t, Save(path, &sample{Name: "v1"}))
	require.NoError(t, SaveBackup(path, &sample{Name: "v2"}))

	var cur, backup sample
	found, err := Load(path, &cur)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v2", cur.Name)

	found, err = Load(path+".bak", &backup)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "v1", backup.Name)
}
