package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackup plants a snapshot file with a fixed modification time.
func fakeBackup(t *testing.T, stamp string, mod time.Time) string {
	t.Helper()
	path := GetUserConfigPath() + BackupSuffix + "." + stamp
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
	return path
}

func TestBackupUserConfig_NoConfig(t *testing.T) {
	isolateConfigEnv(t)

	path, err := BackupUserConfig()

	require.NoError(t, err)
	assert.Empty(t, path)
}

func TestBackupUserConfig_CopiesContent(t *testing.T) {
	isolateConfigEnv(t)
	content := "version: 1\nembedder:\n  provider: ollama\n"
	writeUserConfig(t, content)

	path, err := BackupUserConfig()

	require.NoError(t, err)
	require.NotEmpty(t, path)
	assert.True(t, filepath.IsAbs(path))
	assert.True(t, strings.HasPrefix(path, GetUserConfigPath()+BackupSuffix+"."))

	copied, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(copied))
}

func TestBackupUserConfig_PrunesOldBackups(t *testing.T) {
	isolateConfigEnv(t)
	writeUserConfig(t, "version: 1\n")
	base := time.Now().Add(-time.Hour)
	stamps := []string{
		"20260101-100000",
		"20260101-100500",
		"20260101-101000",
		"20260101-101500",
		"20260101-102000",
	}
	planted := make([]string, len(stamps))
	for i, stamp := range stamps {
		planted[i] = fakeBackup(t, stamp, base.Add(time.Duration(i)*time.Minute))
	}

	fresh, err := BackupUserConfig()

	require.NoError(t, err)
	backups, err := ListUserConfigBackups()
	require.NoError(t, err)
	require.Len(t, backups, MaxBackups)
	assert.Equal(t, fresh, backups[0])
	// The newest planted snapshots survive, the rest are pruned.
	assert.Equal(t, planted[4], backups[1])
	assert.Equal(t, planted[3], backups[2])
	for _, gone := range planted[:3] {
		assert.NoFileExists(t, gone)
	}
}

func TestListUserConfigBackups_NoConfigDir(t *testing.T) {
	isolateConfigEnv(t)

	backups, err := ListUserConfigBackups()

	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestListUserConfigBackups_EmptyDir(t *testing.T) {
	isolateConfigEnv(t)
	require.NoError(t, os.MkdirAll(GetUserConfigDir(), 0o755))

	backups, err := ListUserConfigBackups()

	require.NoError(t, err)
	assert.Empty(t, backups)
}

func TestListUserConfigBackups_SortsNewestFirst(t *testing.T) {
	isolateConfigEnv(t)
	require.NoError(t, os.MkdirAll(GetUserConfigDir(), 0o755))
	base := time.Now().Add(-time.Hour)
	oldest := fakeBackup(t, "20260101-100000", base)
	middle := fakeBackup(t, "20260101-110000", base.Add(time.Minute))
	newest := fakeBackup(t, "20260101-120000", base.Add(2*time.Minute))

	backups, err := ListUserConfigBackups()

	require.NoError(t, err)
	assert.Equal(t, []string{newest, middle, oldest}, backups)
}

func TestListUserConfigBackups_IgnoresOtherFiles(t *testing.T) {
	isolateConfigEnv(t)
	writeUserConfig(t, "version: 1\n")
	stray := filepath.Join(GetUserConfigDir(), "notes.txt")
	require.NoError(t, os.WriteFile(stray, []byte("x"), 0o644))

	backups, err := ListUserConfigBackups()

	require.NoError(t, err)
	assert.Empty(t, backups)
}
