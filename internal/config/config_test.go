package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "artframed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaultsWithMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.Equal(t, "UTC", cfg.Timezone)
	require.Equal(t, 800, cfg.Display.Width)
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
timezone: Australia/Sydney
data_dir: /var/lib/artframed
display:
  width: 1200
  height: 825
  driver: spectra6
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Australia/Sydney", cfg.Timezone)
	require.Equal(t, "/var/lib/artframed", cfg.DataDir)
	require.Equal(t, 1200, cfg.Display.Width)
	require.Equal(t, "spectra6", cfg.Display.Driver)
}

func TestLoadRejectsUnknownTimezone(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: Not/A_Real_Zone\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsInvalidDisplaySize(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "display:\n  width: 0\n  height: 480\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: UTC\n")

	t.Setenv("ARTFRAMED_TIMEZONE", "Europe/London")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Europe/London", cfg.Timezone)
}

func TestWatcherReloadNotifiesOnChangedField(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: UTC\ndisplay:\n  width: 800\n  height: 480\n")

	initial, err := Load(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial)

	var changed []string
	w.OnChange(func(field string, newValue any) {
		changed = append(changed, field)
	})

	writeConfig(t, dir, "timezone: Australia/Sydney\ndisplay:\n  width: 800\n  height: 480\n")
	require.NoError(t, w.Reload())

	require.Contains(t, changed, "timezone")
	require.Equal(t, "Australia/Sydney", w.Current().Timezone)
}

func TestWatcherSaveWritesBackupAndNewFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: UTC\ndisplay:\n  width: 800\n  height: 480\n")
	initial, err := Load(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial)

	next := *initial
	next.Timezone = "Australia/Sydney"
	require.NoError(t, w.Save(&next))

	require.Equal(t, "Australia/Sydney", w.Current().Timezone)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var sawBackup bool
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".bak" {
			sawBackup = true
		}
	}
	require.True(t, sawBackup, "expected a .bak backup file to be written")

	reloaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Australia/Sydney", reloaded.Timezone)
}

func TestWatcherSaveRejectsInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: UTC\n")
	initial, err := Load(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial)

	bad := *initial
	bad.Timezone = "Not/Real"
	require.Error(t, w.Save(&bad))
	require.Equal(t, "UTC", w.Current().Timezone)
}

func TestWatcherReloadLeavesCurrentOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "timezone: UTC\n")
	initial, err := Load(path)
	require.NoError(t, err)
	w := NewWatcher(path, initial)

	writeConfig(t, dir, "timezone: Not/Real\n")
	require.Error(t, w.Reload())
	require.Equal(t, "UTC", w.Current().Timezone)
}
