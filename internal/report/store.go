package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileName is the name of the persisted report document.
const FileName = "report.json"

// Persister saves and restores a Report.
type Persister interface {
	// Save writes the full report, replacing any previously saved state.
	Save(ctx context.Context, r *Report) error
	// Load reads the saved report. A missing report yields an empty Report.
	Load(ctx context.Context) (*Report, error)
}

// FileStore persists a Report as <dir>/report.json.
type FileStore struct {
	dir string
}

// NewFileStore returns a FileStore writing into dir.
//
// Precondition: dir must be non-empty.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the full path of the report document.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, FileName)
}

// Save writes the report atomically: the document is written to a temporary
// file in the same directory and renamed over the previous one.
//
// Postcondition: on success Path() holds the complete document and no other
// file is left in dir.
func (s *FileStore) Save(ctx context.Context, r *Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("creating report dir %q: %w", s.dir, err)
	}

	tmp, err := os.CreateTemp(s.dir, FileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp report: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing temp report: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing temp report: %w", err)
	}
	if err := os.Rename(tmpName, s.Path()); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing report %q: %w", s.Path(), err)
	}
	return nil
}

// Load reads Path(). A missing file yields an empty Report.
func (s *FileStore) Load(ctx context.Context) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading report %q: %w", s.Path(), err)
	}
	r := New()
	if err := json.Unmarshal(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
