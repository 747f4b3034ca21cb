package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ClientState is persisted between workbench runs. Code buffers are never stored.
type ClientState struct {
	AccessToken   string `json:"access_token,omitempty"`
	LastProblemID string `json:"last_problem_id,omitempty"`
	LastLanguage  string `json:"last_language,omitempty"`
}

func Load(path string) (ClientState, error) {
	var st ClientState
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, fmt.Errorf("read client state failed: %w", err)
	}
	if len(data) == 0 {
		return st, nil
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, fmt.Errorf("parse client state failed: %w", err)
	}
	return st, nil
}

func Save(path string, st ClientState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create client state dir failed: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal client state failed: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write client state failed: %w", err)
	}
	return nil
}

func Clear(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove client state failed: %w", err)
	}
	return nil
}
