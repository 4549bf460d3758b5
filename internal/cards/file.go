package cards

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// ReadJSON loads track records from a songs file.
func ReadJSON(path string) ([]TrackRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading songs file: %w", err)
	}

	var records []TrackRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing songs file: %w", err)
	}
	return records, nil
}

// WriteJSON writes track records to path, creating the parent directory if needed.
func WriteJSON(path string, records []TrackRecord) error {
	if records == nil {
		records = []TrackRecord{}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding songs: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing songs file: %w", err)
	}
	return nil
}
