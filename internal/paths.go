package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// StorePaths holds the on-disk locations used by the session store
type StorePaths struct {
	Dir         string // store directory
	SessionFile string // idea_store.json
	IndexFile   string // index.yaml
}

// DetectStorePaths resolves the store directory. An explicit override wins;
// otherwise the per-OS default is used.
func DetectStorePaths(override string) (StorePaths, error) {
	dir := override
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return StorePaths{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		switch runtime.GOOS {
		case "darwin":
			dir = filepath.Join(home, "Library/Application Support/ideasurge")
		case "linux":
			if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
				dir = filepath.Join(xdg, "ideasurge")
			} else {
				dir = filepath.Join(home, ".local/share/ideasurge")
			}
		default:
			dir = filepath.Join(home, ".ideasurge")
		}
	}
	return StorePaths{
		Dir:         dir,
		SessionFile: filepath.Join(dir, sessionStoreFile),
		IndexFile:   filepath.Join(dir, sessionIndexFile),
	}, nil
}

// SessionFileExists checks if a session store has been written
func (sp StorePaths) SessionFileExists() bool {
	_, err := os.Stat(sp.SessionFile)
	return err == nil
}

// DirWritable checks that the store directory can be created and written
func (sp StorePaths) DirWritable() error {
	if err := os.MkdirAll(sp.Dir, 0755); err != nil {
		return &StorageError{Path: sp.Dir, Op: "mkdir", Err: err}
	}
	probe, err := os.CreateTemp(sp.Dir, ".probe-*")
	if err != nil {
		return &StorageError{Path: sp.Dir, Op: "write", Err: err}
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}
