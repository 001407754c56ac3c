package ingestion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guttosm/flippulse/internal/domain/models"
)

// fakeRepo records appended batches.
type fakeRepo struct {
	batches   [][]models.Flip
	appendErr error
}

func (f *fakeRepo) Init() error                    { return nil }
func (f *fakeRepo) Load() (*models.FlipLog, error) { return &models.FlipLog{}, nil }
func (f *fakeRepo) Save(*models.FlipLog) error     { return nil }
func (f *fakeRepo) Ping() error                    { return nil }
func (f *fakeRepo) Append(flips []models.Flip) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.batches = append(f.batches, append([]models.Flip(nil), flips...))
	return nil
}

// wholeRepo rewrites the log on every append, like the JSON store.
type wholeRepo struct{ fakeRepo }

func (w *wholeRepo) RewritesWholeLog() bool { return true }

func (f *fakeRepo) all() []models.Flip {
	var out []models.Flip
	for _, b := range f.batches {
		out = append(out, b...)
	}
	return out
}

func writeFile(t *testing.T, dir, name string, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestProcessDirectory_AppendsInFileNameOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "2025-02.csv", validHeader+"c;1;2;2;1;false;true;main\nd;1;2;2;1;false;true;main\n")
	writeFile(t, dir, "2025-01.csv", validHeader+"a;1;2;2;1;false;true;main\nb;1;2;2;1;false;true;main\n")
	writeFile(t, dir, "notes.txt", "not an export")
	if err := os.Mkdir(filepath.Join(dir, "old.csv"), 0o700); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	repo := &fakeRepo{}
	sum, err := ProcessDirectory(context.Background(), dir, repo, 2)
	if err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if sum.Files != 2 || sum.Flips != 4 {
		t.Fatalf("unexpected summary %+v", sum)
	}

	var names []string
	for _, f := range repo.all() {
		names = append(names, f.Item)
	}
	if strings.Join(names, ",") != "a,b,c,d" {
		t.Fatalf("unexpected order %v", names)
	}
}

func TestProcessDirectory_Batches(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString(validHeader)
	rows := defaultBatchSize + 3
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "item%d;1;2;2;1;false;true;main\n", i)
	}
	writeFile(t, dir, "big.csv", b.String())

	repo := &fakeRepo{}
	sum, err := ProcessDirectory(context.Background(), dir, repo, 0)
	if err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if sum.Flips != rows {
		t.Fatalf("flips=%d, want %d", sum.Flips, rows)
	}
	if len(repo.batches) != 2 || len(repo.batches[0]) != defaultBatchSize || len(repo.batches[1]) != 3 {
		t.Fatalf("unexpected batching: %d batches", len(repo.batches))
	}
	if repo.batches[1][2].Item != fmt.Sprintf("item%d", rows-1) {
		t.Fatalf("last flip out of order: %+v", repo.batches[1][2])
	}
}

func TestProcessDirectory_WholeLogStoreGetsOneAppend(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString(validHeader)
	rows := 2*defaultBatchSize + 1
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "item%d;1;2;2;1;false;true;main\n", i)
	}
	writeFile(t, dir, "big.csv", b.String())
	writeFile(t, dir, "small.csv", validHeader+"a;1;2;2;1;false;true;main\n")

	repo := &wholeRepo{}
	sum, err := ProcessDirectory(context.Background(), dir, repo, 0)
	if err != nil {
		t.Fatalf("ProcessDirectory err: %v", err)
	}
	if sum.Flips != rows+1 {
		t.Fatalf("flips=%d, want %d", sum.Flips, rows+1)
	}
	if len(repo.batches) != 1 || len(repo.batches[0]) != rows+1 {
		t.Fatalf("expected a single append of %d flips, got %d batches", rows+1, len(repo.batches))
	}

	failing := &wholeRepo{fakeRepo{appendErr: errors.New("disk full")}}
	sum, err = ProcessDirectory(context.Background(), dir, failing, 0)
	if err == nil {
		t.Fatalf("expected append error")
	}
	if sum.Flips != 0 || len(failing.batches) != 0 {
		t.Fatalf("failed import must not report appended flips: %+v", sum)
	}
}

func TestProcessDirectory_BadFileAppendsNothing(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.csv", validHeader+"a;1;2;2;1;false;true;main\n")
	writeFile(t, dir, "b.csv", "ticker;price\n")

	repo := &fakeRepo{}
	_, err := ProcessDirectory(context.Background(), dir, repo, 1)
	if !errors.Is(err, ErrInvalidHeader) {
		t.Fatalf("expected ErrInvalidHeader, got %v", err)
	}
	if len(repo.batches) != 0 {
		t.Fatalf("nothing may be appended when a file fails")
	}
}

func TestProcessDirectory_Errors(t *testing.T) {
	cases := []struct {
		name  string
		setup func(t *testing.T) (string, *fakeRepo)
	}{
		{
			name: "missing dir",
			setup: func(t *testing.T) (string, *fakeRepo) {
				return filepath.Join(t.TempDir(), "nope"), &fakeRepo{}
			},
		},
		{
			name: "no export files",
			setup: func(t *testing.T) (string, *fakeRepo) {
				return t.TempDir(), &fakeRepo{}
			},
		},
		{
			name: "append failure",
			setup: func(t *testing.T) (string, *fakeRepo) {
				dir := t.TempDir()
				writeFile(t, dir, "a.csv", validHeader+"a;1;2;2;1;false;true;main\n")
				return dir, &fakeRepo{appendErr: errors.New("disk full")}
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir, repo := tc.setup(t)
			if _, err := ProcessDirectory(context.Background(), dir, repo, 1); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}
