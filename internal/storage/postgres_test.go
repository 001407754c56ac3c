package storage

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/guttosm/flippulse/internal/domain/models"
)

type dummyErr struct{}

func (dummyErr) Error() string { return "dummy" }

func newMockRepo(t *testing.T) (*postgresRepository, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	repo := &postgresRepository{db: db}
	cleanup := func() { _ = db.Close() }
	return repo, mock, cleanup
}

var flipColumns = []string{"item", "buy", "sell", "sold", "qty", "cancelled", "done", "account"}

func TestLoad_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows(flipColumns).
		AddRow("Law rune", 10, 20, 20, 50, false, true, "main").
		AddRow("Law rune", 10, 20, 0, 50, false, false, "").
		AddRow("Yew logs", 100, 200, 200, 10, false, true, "alt")
	mock.ExpectQuery(`SELECT item, buy, sell, sold, qty, cancelled, done, account\s+FROM flips\s+ORDER BY id`).
		WillReturnRows(rows)

	log, err := repo.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(log.Flips) != 3 {
		t.Fatalf("got %d flips, want 3", len(log.Flips))
	}
	if log.Flips[1].Account != models.DefaultAccount {
		t.Fatalf("empty account not defaulted: %q", log.Flips[1].Account)
	}
	if want := (models.Totals{Profit: 1460, FlipsDone: 2}); log.Stats != want {
		t.Fatalf("totals=%+v, want %+v", log.Stats, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLoad_QueryError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectQuery(`SELECT item`).WillReturnError(dummyErr{})
	if _, err := repo.Load(); err == nil {
		t.Fatalf("expected query error")
	}
}

func TestLoad_ScanError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	rows := sqlmock.NewRows(flipColumns).AddRow("Law rune", "not-a-number", 20, 20, 50, false, true, "main")
	mock.ExpectQuery(`SELECT item`).WillReturnRows(rows)
	if _, err := repo.Load(); err == nil {
		t.Fatalf("expected scan error")
	}
}

func TestAppend_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SET LOCAL synchronous_commit = OFF")).WillReturnResult(sqlmock.NewResult(0, 0))
	// pq.CopyIn is driver specific; sqlmock sees a prepared statement and plain execs.
	prep := mock.ExpectPrepare(".*")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))     // row exec
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0)) // final Exec()
	mock.ExpectCommit()

	flips := []models.Flip{{Item: "Law rune", Buy: 10, Sell: 20, Limit: 50}}
	if err := repo.Append(flips); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAppend_Empty(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	if err := repo.Append(nil); err != nil {
		t.Fatalf("Append(nil): %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unexpected db calls: %v", err)
	}
}

func TestAppend_Errors(t *testing.T) {
	cases := []struct {
		name   string
		expect func(mock sqlmock.Sqlmock)
	}{
		{"begin", func(mock sqlmock.Sqlmock) {
			mock.ExpectBegin().WillReturnError(dummyErr{})
		}},
		{"row exec", func(mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("SET LOCAL synchronous_commit = OFF")).WillReturnResult(sqlmock.NewResult(0, 0))
			prep := mock.ExpectPrepare(".*")
			prep.ExpectExec().WillReturnError(dummyErr{})
			mock.ExpectRollback()
		}},
		{"final exec", func(mock sqlmock.Sqlmock) {
			mock.ExpectBegin()
			mock.ExpectExec(regexp.QuoteMeta("SET LOCAL synchronous_commit = OFF")).WillReturnResult(sqlmock.NewResult(0, 0))
			prep := mock.ExpectPrepare(".*")
			prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
			mock.ExpectExec(".*").WillReturnError(dummyErr{})
			mock.ExpectRollback()
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo, mock, done := newMockRepo(t)
			defer done()
			tc.expect(mock)

			if err := repo.Append([]models.Flip{{Item: "X", Buy: 1, Sell: 2, Limit: 1}}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestSave_SQLMock(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE flips RESTART IDENTITY")).WillReturnResult(sqlmock.NewResult(0, 0))
	prep := mock.ExpectPrepare(".*")
	prep.ExpectExec().WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	log := &models.FlipLog{Flips: []models.Flip{
		{Item: "a", Buy: 1, Sell: 2, Limit: 1},
		{Item: "b", Buy: 1, Sell: 2, Limit: 1, Cancelled: true},
	}}
	if err := repo.Save(log); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSave_TruncateError(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("TRUNCATE flips RESTART IDENTITY")).WillReturnError(dummyErr{})
	mock.ExpectRollback()

	if err := repo.Save(&models.FlipLog{}); err == nil {
		t.Fatalf("expected truncate error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestInitAndPing(t *testing.T) {
	repo, mock, done := newMockRepo(t)
	defer done()

	called := false
	old := migrator
	migrator = func(ctx context.Context, db *sql.DB) error {
		called = db == repo.db
		return nil
	}
	t.Cleanup(func() { migrator = old })

	if err := repo.Init(); err != nil || !called {
		t.Fatalf("Init: err=%v called=%v", err, called)
	}

	mock.ExpectPing()
	if err := repo.Ping(); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestNewPostgresRepository_Construct(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	defer func() { _ = db.Close() }()
	if r := NewPostgresRepository(db); r == nil {
		t.Fatalf("expected non-nil repository")
	}
}
