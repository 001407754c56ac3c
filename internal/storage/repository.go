package storage

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/guttosm/flippulse/internal/domain/models"
)

// ErrNotFound is returned by Load when the backing store has no flip log yet.
var ErrNotFound = errors.New("flip log not found")

// FlipRepository defines the contract for persisting the flip log.
//
// The log is always read and written as a whole snapshot; positions in
// FlipLog.Flips are trade indexes and must be preserved.
type FlipRepository interface {
	// Init prepares the store (default document, schema).
	Init() error
	// Load reads the full log.
	Load() (*models.FlipLog, error)
	// Save replaces the stored log with the snapshot.
	Save(log *models.FlipLog) error
	// Append adds flips to the end of the log.
	Append(flips []models.Flip) error
	// Ping checks that the store is reachable.
	Ping() error
}

// WholeLogWriter is implemented by stores that rewrite the entire log on
// every Append. Bulk loaders give them everything in a single call, so a
// failed write leaves the previous log in place.
type WholeLogWriter interface {
	RewritesWholeLog() bool
}

// LoadBlacklist reads item names, one per line, from path.
// Blank lines are ignored and a missing file yields an empty set.
func LoadBlacklist(path string) (map[string]struct{}, error) {
	set := make(map[string]struct{})
	if path == "" {
		return set, nil
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open blacklist: %w", err)
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		name := strings.TrimSpace(sc.Text())
		if name == "" {
			continue
		}
		set[name] = struct{}{}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read blacklist: %w", err)
	}
	return set, nil
}

// normalizeAccounts fills in the default account for legacy rows.
func normalizeAccounts(flips []models.Flip) {
	for i := range flips {
		if flips[i].Account == "" {
			flips[i].Account = models.DefaultAccount
		}
	}
}
