package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/logger"
	"github.com/guttosm/flippulse/internal/storage"
)

const (
	fileSuffix       = ".csv"
	defaultBatchSize = 5000
	maxParallel      = 8
)

// Summary reports what an import appended.
type Summary struct {
	Files int
	Flips int
}

// ProcessDirectory imports every "*.csv" export in dir into the flip log.
//
// Parameters:
//   - dir: directory containing the export files.
//   - repo: flip log storage.
//   - parallel: parser goroutines, clamped to 1..8; 0 uses min(8, NumCPU).
//
// Behavior:
//   - Files are parsed concurrently; the first failure cancels the rest and
//     nothing is appended.
//   - Flips are appended in file name order, then row order, so trade
//     indexes follow the exports.
//   - Appends are issued in batches of defaultBatchSize. Stores that
//     rewrite the whole log (storage.WholeLogWriter) get one append, so a
//     write failure leaves their log untouched. Batched stores commit
//     each batch on its own.
//
// Returns:
//   - Summary of files and flips imported.
//   - error: first error encountered (if any).
func ProcessDirectory(ctx context.Context, dir string, repo storage.FlipRepository, parallel int) (Summary, error) {
	log := logger.With("ingestion")

	files, err := exportFiles(dir)
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		return Summary{}, fmt.Errorf("no %s files in %s", fileSuffix, dir)
	}

	limit := maxParallel
	if parallel > 0 {
		limit = min(parallel, maxParallel)
	} else if c := runtime.NumCPU(); c < limit {
		limit = c
	}
	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("import start")

	parsed := make([][]models.Flip, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(file)

			flips, err := parseFile(gctx, file)
			if err != nil {
				log.Error().Str("file", base).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", base, err)
			}
			parsed[i] = flips
			log.Debug().Str("file", base).Int("rows", len(flips)).Dur("elapsed", time.Since(start)).Msg("file parsed")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, err
	}

	batchSize := defaultBatchSize
	if w, ok := repo.(storage.WholeLogWriter); ok && w.RewritesWholeLog() {
		batchSize = 0
		for _, flips := range parsed {
			batchSize += len(flips)
		}
	}

	sum := Summary{Files: len(files)}
	var batch []models.Flip
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := repo.Append(batch); err != nil {
			return fmt.Errorf("append after %d flips: %w", sum.Flips, err)
		}
		sum.Flips += len(batch)
		batch = nil
		return nil
	}

	for _, flips := range parsed {
		for _, f := range flips {
			batch = append(batch, f)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return sum, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return sum, err
	}

	log.Info().Int("files", sum.Files).Int("flips", sum.Flips).Msg("import done")
	return sum, nil
}

// exportFiles lists the export files of dir sorted by name.
func exportFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), fileSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}
