package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Store holds one save document plus the last-suspend instant, which lives
// outside the document.
type Store interface {
	Load() (Record, error) // ErrNotFound when nothing was saved yet
	Save(Record) error
	LoadSuspend() (time.Time, error) // ErrNotFound when unset
	SaveSuspend(time.Time) error
}

// DataDir resolves the platform data directory. KIMCHI_DATA_DIR wins over
// the platform default.
func DataDir() string {
	if custom := os.Getenv("KIMCHI_DATA_DIR"); custom != "" {
		return custom
	}
	const app = "KimchiClicker"
	switch runtime.GOOS {
	case "windows":
		if base := os.Getenv("APPDATA"); base != "" {
			return filepath.Join(base, app)
		}
	case "darwin":
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, "Library", "Application Support", app)
		}
	default:
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, app)
		}
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, ".local", "share", app)
		}
	}
	return "."
}

// FileStore keeps the save in Dir/File and the suspend stamp in a sidecar.
type FileStore struct {
	Dir      string
	File     string
	Compress bool

	mu sync.Mutex
}

// NewFileStore creates dir if needed. An empty dir resolves via DataDir.
func NewFileStore(dir, file string, compress bool) (*FileStore, error) {
	if dir == "" {
		dir = DataDir()
	}
	if file == "" {
		file = "kimchi_save.json"
	}
	if compress && !strings.HasSuffix(file, ".lz4") {
		file += ".lz4"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{Dir: dir, File: file, Compress: compress}, nil
}

// Path is the save document location.
func (s *FileStore) Path() string { return filepath.Join(s.Dir, s.File) }

func (s *FileStore) suspendPath() string { return s.Path() + ".suspend" }

func (s *FileStore) Load() (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return Decode(data)
}

func (s *FileStore) Save(r Record) error {
	data, err := Encode(r, s.Compress)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.Path(), data)
}

func (s *FileStore) LoadSuspend() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.suspendPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(string(data)))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse suspend stamp: %w", err)
	}
	return t, nil
}

func (s *FileStore) SaveSuspend(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return writeAtomic(s.suspendPath(), []byte(t.UTC().Format(time.RFC3339Nano)))
}

// Delete removes the save and its sidecar.
func (s *FileStore) Delete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var errs []error
	for _, p := range []string{s.Path(), s.suspendPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// writeAtomic writes to a temp file in the same directory and renames it
// over path.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Rename(name, path); err != nil {
		os.Remove(name)
		return err
	}
	return nil
}

// MemoryStore keeps the encoded document in memory. SaveErr, when set, makes
// every Save fail.
type MemoryStore struct {
	mu      sync.Mutex
	data    []byte
	suspend time.Time
	saves   int

	SaveErr error
}

func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (m *MemoryStore) Load() (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return Record{}, ErrNotFound
	}
	return Decode(m.data)
}

func (m *MemoryStore) Save(r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	data, err := Encode(r, false)
	if err != nil {
		return err
	}
	m.data = data
	m.saves++
	return nil
}

func (m *MemoryStore) LoadSuspend() (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suspend.IsZero() {
		return time.Time{}, ErrNotFound
	}
	return m.suspend, nil
}

func (m *MemoryStore) SaveSuspend(t time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suspend = t
	return nil
}

// Saves counts successful writes.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Raw returns the stored document bytes.
func (m *MemoryStore) Raw() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

// SetRaw replaces the stored document, e.g. with a legacy or damaged one.
func (m *MemoryStore) SetRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}
