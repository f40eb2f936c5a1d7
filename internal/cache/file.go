package cache

import (
	"encoding/json"
	"fmt"
	"os"
)

// Snapshot round-trips the last fetched payload through a JSON file on disk.
// It is the hand-off between fetch and ranking, not a durable store: writes
// replace the previous search wholesale.
type Snapshot struct {
	path string
}

func NewSnapshot(path string) *Snapshot {
	return &Snapshot{path: path}
}

func (s *Snapshot) Path() string { return s.path }

func (s *Snapshot) Write(payload map[string]any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Read loads the last written payload. A missing file is an error: there is
// nothing to replay yet.
func (s *Snapshot) Read() (map[string]any, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return payload, nil
}
