package vault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ulikunitz/xz"

	"github.com/ukaji3/exselect-go/pkg/exselect/codec"
)

// ErrNotFound indicates the owner has no saved table.
var ErrNotFound = errors.New("no saved table")

// Mode says how a record's cells are stored.
type Mode string

const (
	ModePlain     Mode = "plain"
	ModeEncrypted Mode = "encrypted"
)

// Record is one saved table. Cells are stored as text; in ModeEncrypted
// every data cell is sealed and the header stays readable.
type Record struct {
	Name        string     `json:"name"`
	SheetName   string     `json:"sheet_name,omitempty"`
	Fingerprint string     `json:"fingerprint"`
	Mode        Mode       `json:"mode"`
	Header      []string   `json:"header"`
	Rows        [][]string `json:"rows"`
	SavedAt     time.Time  `json:"saved_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r *Record) clone() *Record {
	out := *r
	out.Header = append([]string(nil), r.Header...)
	out.Rows = make([][]string, len(r.Rows))
	for i, row := range r.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return &out
}

// Store persists one record per owner.
type Store interface {
	Put(ctx context.Context, owner string, rec *Record) error
	// Get returns ErrNotFound when owner has nothing saved.
	Get(ctx context.Context, owner string) (*Record, error)
	// Delete succeeds when nothing is saved.
	Delete(ctx context.Context, owner string) error
}

// MemoryStore keeps records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*Record)}
}

func (s *MemoryStore) Put(_ context.Context, owner string, rec *Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[owner] = rec.clone()
	return nil
}

func (s *MemoryStore) Get(_ context.Context, owner string) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.clone(), nil
}

func (s *MemoryStore) Delete(_ context.Context, owner string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, owner)
	return nil
}

// FileStore keeps each record as xz-compressed JSON in Dir. File names are
// derived from the owner so addresses never reach the filesystem.
type FileStore struct {
	Dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create vault directory: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (s *FileStore) path(owner string) string {
	return filepath.Join(s.Dir, codec.Fingerprint([]byte(owner))[:32]+".json.xz")
}

func (s *FileStore) Put(_ context.Context, owner string, rec *Record) error {
	tmp, err := os.CreateTemp(s.Dir, "record-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w, err := xz.NewWriter(tmp)
	if err != nil {
		tmp.Close()
		return err
	}
	if err := json.NewEncoder(w).Encode(rec); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode record: %w", err)
	}
	if err := w.Close(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path(owner))
}

func (s *FileStore) Get(_ context.Context, owner string) (*Record, error) {
	f, err := os.Open(s.path(owner))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to open record: %w", err)
	}
	var rec Record
	if err := json.NewDecoder(r).Decode(&rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

func (s *FileStore) Delete(_ context.Context, owner string) error {
	err := os.Remove(s.path(owner))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
