package scan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Journal appends one JSON line per instrument decision for later audit.
type Journal struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

// NewJournal creates/opens the target file and returns a journal.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &Journal{file: file, enc: json.NewEncoder(file)}, nil
}

// Record writes a single decision line. Journal write failures are silent:
// the audit trail must never affect the scan.
func (j *Journal) Record(res Result) {
	if j == nil {
		return
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(res)
}

// Close flushes and closes the file handle.
func (j *Journal) Close() error {
	if j == nil {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file == nil {
		return nil
	}
	err := j.file.Close()
	j.file = nil
	return err
}
