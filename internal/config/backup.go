package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// MaxBackups caps how many config snapshots are retained.
	MaxBackups = 3

	// BackupSuffix is appended to the config filename for snapshots.
	BackupSuffix = ".bak"
)

// BackupUserConfig snapshots the user config next to the original as
// <config>.bak.<timestamp> and returns the snapshot path. When no user
// config exists there is nothing to do and it returns an empty path.
func BackupUserConfig() (string, error) {
	if !UserConfigExists() {
		return "", nil
	}

	src := GetUserConfigPath()
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read config for backup: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	dst := src + BackupSuffix + "." + stamp
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup: %w", err)
	}

	// Retention is best effort; the snapshot itself already succeeded.
	_ = pruneBackups()

	return dst, nil
}

// ListUserConfigBackups returns the snapshots of the user config,
// newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()
	dir := filepath.Dir(configPath)
	prefix := filepath.Base(configPath) + BackupSuffix + "."

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	type snapshot struct {
		path string
		mod  time.Time
	}
	var found []snapshot
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		snap := snapshot{path: filepath.Join(dir, entry.Name())}
		if info, err := entry.Info(); err == nil {
			snap.mod = info.ModTime()
		}
		found = append(found, snap)
	}

	sort.Slice(found, func(i, j int) bool {
		return found[i].mod.After(found[j].mod)
	})

	backups := make([]string, len(found))
	for i, snap := range found {
		backups[i] = snap.path
	}
	return backups, nil
}

// pruneBackups deletes snapshots beyond MaxBackups, oldest first.
// Individual removals are allowed to fail.
func pruneBackups() error {
	backups, err := ListUserConfigBackups()
	if err != nil {
		return err
	}

	for _, stale := range backups[min(MaxBackups, len(backups)):] {
		_ = os.Remove(stale)
	}
	return nil
}
