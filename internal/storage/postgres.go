package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	pq "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/guttosm/flippulse/internal/domain/models"
	"github.com/guttosm/flippulse/internal/margin"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations with goose.
func Migrate(ctx context.Context, db *sql.DB) error {
	sub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, sub)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// migrator is swapped in unit tests, where sqlmock cannot run goose.
var migrator = Migrate

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a repository over the flips table.
// Rows are ordered by their serial id, which preserves trade indexes.
func NewPostgresRepository(db *sql.DB) FlipRepository {
	return &postgresRepository{db: db}
}

// Init runs the schema migrations.
func (r *postgresRepository) Init() error {
	return migrator(context.Background(), r.db)
}

// Load reads every flip in insertion order. Totals are derived.
func (r *postgresRepository) Load() (*models.FlipLog, error) {
	rows, err := r.db.Query(`
		SELECT item, buy, sell, sold, qty, cancelled, done, account
		FROM flips
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	log := &models.FlipLog{Flips: []models.Flip{}}
	for rows.Next() {
		var f models.Flip
		if err := rows.Scan(&f.Item, &f.Buy, &f.Sell, &f.Sold, &f.Limit, &f.Cancelled, &f.Done, &f.Account); err != nil {
			return nil, err
		}
		log.Flips = append(log.Flips, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	normalizeAccounts(log.Flips)
	log.Stats = margin.Totals(log.Flips)
	return log, nil
}

// Save truncates the table and bulk loads the snapshot in one transaction.
func (r *postgresRepository) Save(log *models.FlipLog) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`TRUNCATE flips RESTART IDENTITY`); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := copyFlips(tx, log.Flips); err != nil {
		return err
	}
	return tx.Commit()
}

// Append bulk loads flips with COPY in a single transaction.
func (r *postgresRepository) Append(flips []models.Flip) error {
	if len(flips) == 0 {
		return nil
	}
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}

	// Small optimization for bulk load
	if _, err := tx.Exec(`SET LOCAL synchronous_commit = OFF`); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := copyFlips(tx, flips); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepository) Ping() error {
	return r.db.Ping()
}

// copyFlips streams rows through pq.CopyIn. On failure the transaction is
// rolled back before returning.
func copyFlips(tx *sql.Tx, flips []models.Flip) error {
	stmt, err := tx.Prepare(pq.CopyIn(
		"flips",
		"item",
		"buy",
		"sell",
		"sold",
		"qty",
		"cancelled",
		"done",
		"account",
	))
	if err != nil {
		_ = tx.Rollback()
		return err
	}

	for _, f := range flips {
		account := f.Account
		if account == "" {
			account = models.DefaultAccount
		}
		if _, err := stmt.Exec(f.Item, f.Buy, f.Sell, f.Sold, f.Limit, f.Cancelled, f.Done, account); err != nil {
			_ = stmt.Close()
			_ = tx.Rollback()
			return err
		}
	}

	if _, err := stmt.Exec(); err != nil {
		_ = stmt.Close()
		_ = tx.Rollback()
		return err
	}
	if err := stmt.Close(); err != nil {
		_ = tx.Rollback()
		return err
	}
	return nil
}
