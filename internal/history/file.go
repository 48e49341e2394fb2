package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// schemaVersion tags the persisted envelope so a future layout change can be
// migrated or invalidated instead of misparsed.
const schemaVersion = 1

type fileEnvelope struct {
	Schema   int       `json:"schema"`
	Versions []Version `json:"versions"`
}

// FileRepository persists the version list as one JSON document.
type FileRepository struct {
	path string
}

// NewFileRepository stores history at path, creating parent directories on
// first save.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// Load reads the persisted list. A missing file is an empty history, not an
// error; anything malformed is reported so the store can fall back to empty.
func (r *FileRepository) Load() ([]Version, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var envelope fileEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	if envelope.Schema != schemaVersion {
		return nil, fmt.Errorf("unsupported history schema %d", envelope.Schema)
	}
	return envelope.Versions, nil
}

// Save writes the full list. The write is atomic-enough for a single-user
// client: temp file in the same directory, then rename.
func (r *FileRepository) Save(versions []Version) error {
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(fileEnvelope{Schema: schemaVersion, Versions: versions}, "", "  ")
	if err != nil {
		return err
	}
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, r.path)
}
