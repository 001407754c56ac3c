package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/margin"
)

// BackupSuffix is appended to the data file name for the pre-write copy.
const BackupSuffix = "_backup"

// JSONRepository stores the flip log as a single JSON document:
//
//	{"stats":{"profit":0,"flips_done":0},"flips":[...]}
//
// Every write first copies the current file to <path>_backup.
type JSONRepository struct {
	path string
	mu   sync.Mutex
}

// NewJSONRepository returns a repository backed by the file at path.
func NewJSONRepository(path string) *JSONRepository {
	return &JSONRepository{path: path}
}

// Path is the data file location.
func (r *JSONRepository) Path() string {
	return r.path
}

// Init creates the data directory and an empty document when missing.
func (r *JSONRepository) Init() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	if _, err := os.Stat(r.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat data file: %w", err)
	}
	return r.write(&models.FlipLog{Flips: []models.Flip{}})
}

// Load reads and decodes the document.
func (r *JSONRepository) Load() (*models.FlipLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.read()
}

// Save backs up the current file and writes the snapshot.
func (r *JSONRepository) Save(log *models.FlipLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backup(); err != nil {
		return err
	}
	return r.write(log)
}

// Append adds flips to the end of the document and refreshes the totals.
func (r *JSONRepository) Append(flips []models.Flip) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.read()
	if errors.Is(err, ErrNotFound) {
		log, err = &models.FlipLog{}, nil
	}
	if err != nil {
		return err
	}

	log.Flips = append(log.Flips, flips...)
	log.Stats = margin.Totals(log.Flips)

	if err := r.backup(); err != nil {
		return err
	}
	return r.write(log)
}

// RewritesWholeLog is true: every Append rewrites the document.
func (r *JSONRepository) RewritesWholeLog() bool {
	return true
}

var _ WholeLogWriter = (*JSONRepository)(nil)

// Ping reports whether the data file can be reached.
func (r *JSONRepository) Ping() error {
	if _, err := os.Stat(r.path); err != nil {
		return fmt.Errorf("data file unavailable: %w", err)
	}
	return nil
}

func (r *JSONRepository) read() (*models.FlipLog, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read data file: %w", err)
	}

	var log models.FlipLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("decode data file %s: %w", r.path, err)
	}
	if log.Flips == nil {
		log.Flips = []models.Flip{}
	}
	normalizeAccounts(log.Flips)
	return &log, nil
}

// write replaces the file through a temp file in the same directory.
func (r *JSONRepository) write(log *models.FlipLog) error {
	if log.Flips == nil {
		log.Flips = []models.Flip{}
	}
	data, err := json.MarshalIndent(log, "", "\t")
	if err != nil {
		return fmt.Errorf("encode flip log: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(r.path), filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace data file: %w", err)
	}
	return nil
}

func (r *JSONRepository) backup() error {
	src, err := os.Open(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open data file for backup: %w", err)
	}
	defer func() { _ = src.Close() }()

	dst, err := os.Create(r.path + BackupSuffix)
	if err != nil {
		return fmt.Errorf("create backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy backup: %w", err)
	}
	return dst.Close()
}
