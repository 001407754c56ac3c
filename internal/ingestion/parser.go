package ingestion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/guttosm/flippulse/internal/domain/models"
)

// ErrInvalidHeader is returned when a file does not start with the
// expected column header.
var ErrInvalidHeader = errors.New("invalid header")

// expectedHeaders enforces strict column ordering for flip exports.
// If the header doesn't match EXACTLY (order + count), the import fails.
var expectedHeaders = []string{
	"item",
	"buy",
	"sell",
	"sold",
	"limit",
	"cancelled",
	"done",
	"account",
}

// parseFile opens, validates and parses one export file.
//
// It fails on:
//   - header not matching expected order/length
//   - rows with the wrong column count or malformed numbers
//   - unrecoverable I/O errors
//
// It tolerates:
//   - empty numeric and boolean cells (they become zero values)
//   - an empty account (becomes models.DefaultAccount)
func parseFile(ctx context.Context, path string) ([]models.Flip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer func() { _ = f.Close() }()

	return parse(ctx, f)
}

func parse(ctx context.Context, in io.Reader) ([]models.Flip, error) {
	r := csv.NewReader(in)
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) != len(expectedHeaders) {
		return nil, fmt.Errorf("%w: expected %d columns, got %d", ErrInvalidHeader, len(expectedHeaders), len(header))
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), expectedHeaders[i]) {
			return nil, fmt.Errorf("%w: col %d expected %q, got %q", ErrInvalidHeader, i+1, expectedHeaders[i], h)
		}
	}

	var flips []models.Flip
	lineNumber := 1
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line after %d: %w", lineNumber, err)
		}
		lineNumber++

		if len(rec) != len(expectedHeaders) {
			return nil, fmt.Errorf("invalid column count on line %d: expected %d got %d", lineNumber, len(expectedHeaders), len(rec))
		}

		flip, err := recordToFlip(rec)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNumber, err)
		}
		flips = append(flips, flip)
	}
	return flips, nil
}

// recordToFlip converts one record (already validated length==8) into a
// models.Flip, in the column order of expectedHeaders.
func recordToFlip(rec []string) (models.Flip, error) {
	f := models.Flip{
		Item:    strings.TrimSpace(rec[0]),
		Account: strings.TrimSpace(rec[7]),
	}
	if f.Item == "" {
		return f, errors.New("item is required")
	}
	if f.Account == "" {
		f.Account = models.DefaultAccount
	}

	ints := []struct {
		name string
		dst  *int64
		raw  string
	}{
		{"buy", &f.Buy, rec[1]},
		{"sell", &f.Sell, rec[2]},
		{"sold", &f.Sold, rec[3]},
		{"limit", &f.Limit, rec[4]},
	}
	for _, c := range ints {
		s := strings.ReplaceAll(strings.TrimSpace(c.raw), ",", "")
		if s == "" {
			continue
		}
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %v", c.name, err)
		}
		*c.dst = v
	}

	bools := []struct {
		name string
		dst  *bool
		raw  string
	}{
		{"cancelled", &f.Cancelled, rec[5]},
		{"done", &f.Done, rec[6]},
	}
	for _, c := range bools {
		s := strings.TrimSpace(c.raw)
		if s == "" {
			continue
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("invalid %s: %v", c.name, err)
		}
		*c.dst = v
	}

	return f, nil
}

// WriteCSV writes flips in the import format, header included.
func WriteCSV(w io.Writer, flips []models.Flip) error {
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(expectedHeaders); err != nil {
		return err
	}
	for _, f := range flips {
		rec := []string{
			f.Item,
			strconv.FormatInt(f.Buy, 10),
			strconv.FormatInt(f.Sell, 10),
			strconv.FormatInt(f.Sold, 10),
			strconv.FormatInt(f.Limit, 10),
			strconv.FormatBool(f.Cancelled),
			strconv.FormatBool(f.Done),
			f.Account,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
