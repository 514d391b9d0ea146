package paths

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// StateBaseDir resolves the default base directory for arena state.
// Preference order:
// 1. $XDG_STATE_HOME/arena
// 2. ~/.local/state/arena
// 3. $XDG_RUNTIME_DIR/arena
func StateBaseDir() (string, error) {
	if stateHome := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); stateHome != "" {
		return filepath.Join(stateHome, "arena"), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		if runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); runtimeDir != "" {
			return filepath.Join(runtimeDir, "arena"), nil
		}
		return "", err
	}
	if home != "" {
		return filepath.Join(home, ".local", "state", "arena"), nil
	}
	if runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); runtimeDir != "" {
		return filepath.Join(runtimeDir, "arena"), nil
	}
	return "", errors.New("unable to resolve state directory from XDG state/runtime or home")
}

// MatchLogBaseDir is where each session writes its captured container logs,
// one subdirectory per run ID.
func MatchLogBaseDir() (string, error) {
	base, err := StateBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "matches"), nil
}

// HistoryDBPath is the sqlite database holding the match history.
func HistoryDBPath() (string, error) {
	base, err := StateBaseDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "history.db"), nil
}
