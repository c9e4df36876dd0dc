package veranet

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// State records the last successfully verified bundle, so operators can see
// what the process is actually serving without re-reading the manifest.
type State struct {
	Model      string    `json:"model"`
	Version    string    `json:"version"`
	VerifiedAt time.Time `json:"verified_at"`
}

const stateFile = "state.json"

// SaveState writes state.json into the bundle directory. Best effort: a
// read-only bundle dir is not an error worth failing startup over, so the
// caller decides what to do with one.
func SaveState(dir string, m *Manifest) error {
	st := State{Model: m.Model, Version: m.Version, VerifiedAt: time.Now().UTC()}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, stateFile), data, 0o644)
}

// LoadState reads state.json from the bundle directory.
func LoadState(dir string) (*State, error) {
	data, err := os.ReadFile(filepath.Join(dir, stateFile))
	if err != nil {
		return nil, err
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
