package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and writes the review ledger on disk. Writes go through a temp
// file and rename so a crash mid-save never leaves a truncated document.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
}

func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

// Load parses the review document. A missing file returns an empty ledger;
// the document is schema-checked before decoding.
func (s *Store) Load() (*Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read review document: %w", err)
	}
	if len(data) == 0 {
		return New(), nil
	}

	// accept both the bare member map and the legacy {"members": ...} wrapper
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parse review document: %w", err)
	}
	if _, wrapped := probe["members"]; !wrapped {
		wrappedDoc := append([]byte(`{"members":`), data...)
		data = append(wrappedDoc, '}')
	}

	if err := validateDocument(data); err != nil {
		return nil, err
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("decode review document: %w", err)
	}
	if l.Members == nil {
		l.Members = make(map[string]*Member)
	}
	return &l, nil
}

// Save writes the ledger atomically.
func (s *Store) Save(l *Ledger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(l.Members, "", "  ")
	if err != nil {
		return fmt.Errorf("encode review document: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".review-*.json")
	if err != nil {
		return fmt.Errorf("create temp review file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write review document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp review file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace review document: %w", err)
	}
	s.logger.Debug("review document saved", "path", s.path, "members", len(l.Members))
	return nil
}
