package library

import (
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3" // dialect registration
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dialectSQLite  = "sqlite3"
	tableCheckouts = "checkouts"
	colSeq         = "seq"
	colID          = "id"
	colMemberID    = "member_id"
	colMemberName  = "member_name"
	colBookID      = "book_id"
	colBookTitle   = "book_title"
	colBorrowedAt  = "borrowed_at"
)

// Checkout is one successful borrow as recorded by the Ledger.
type Checkout struct {
	Seq        int64     `db:"seq" json:"seq"`
	ID         string    `db:"id" json:"id"`
	MemberID   string    `db:"member_id" json:"member_id"`
	MemberName string    `db:"member_name" json:"member_name"`
	BookID     string    `db:"book_id" json:"book_id"`
	BookTitle  string    `db:"book_title" json:"book_title"`
	BorrowedAt time.Time `db:"borrowed_at" json:"borrowed_at"`
}

// CheckoutFilter narrows a Checkouts query. Empty fields match everything.
type CheckoutFilter struct {
	MemberID string
	BookID   string
}

// Ledger is a Journal backed by a private in-memory SQLite database. Its
// contents live exactly as long as the Ledger does.
type Ledger struct {
	db *sqlx.DB

	insertStmt *sqlx.NamedStmt
}

// NewLedger opens an empty in-memory ledger, applies the schema and prepares
// the insert statement.
func NewLedger() (*Ledger, error) {
	db, err := sqlx.Open(dialectSQLite, ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Every connection to ":memory:" gets its own database, so pin the pool
	// to a single long-lived connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	ledger := &Ledger{db: db}
	if err := ledger.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}
	return ledger, nil
}

// Close releases the prepared statement and drops the database.
func (l *Ledger) Close() error {
	if l.insertStmt != nil {
		l.insertStmt.Close()
	}
	return l.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

// createSchema runs once against a database that NewLedger has just opened,
// which is always empty.
func createSchema(db *sqlx.DB) error {
	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE checkouts (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            member_id TEXT NOT NULL,
            member_name TEXT NOT NULL,
            book_id TEXT NOT NULL,
            book_title TEXT NOT NULL,
            borrowed_at DATETIME NOT NULL
        );`,
		`CREATE INDEX idx_checkouts_member ON checkouts(member_id);`,
		`CREATE INDEX idx_checkouts_book ON checkouts(book_id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}

	return tx.Commit()
}

func (l *Ledger) prepareStatements() error {
	var err error
	l.insertStmt, err = l.db.PrepareNamed(`INSERT INTO checkouts(id,member_id,member_name,book_id,book_title,borrowed_at)
        VALUES(:id,:member_id,:member_name,:book_id,:book_title,:borrowed_at)`)
	return err
}

// ---------------------------------------------------------------------------
// Journal
// ---------------------------------------------------------------------------

// RecordCheckout stores c. A missing ID is filled with a time-ordered UUID and
// a zero BorrowedAt with the current time.
func (l *Ledger) RecordCheckout(c Checkout) error {
	if c.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("generate checkout id: %w", err)
		}
		c.ID = id.String()
	}
	if c.BorrowedAt.IsZero() {
		c.BorrowedAt = time.Now().UTC()
	}

	if _, err := l.insertStmt.Exec(c); err != nil {
		return fmt.Errorf("insert checkout: %w", err)
	}
	return nil
}

// Checkouts returns the recorded borrows matching filter, oldest first.
func (l *Ledger) Checkouts(filter CheckoutFilter) ([]Checkout, error) {
	query, args, err := buildCheckoutsQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("build checkouts query: %w", err)
	}

	checkouts := []Checkout{}
	if err := l.db.Select(&checkouts, query, args...); err != nil {
		return nil, fmt.Errorf("query checkouts: %w", err)
	}
	return checkouts, nil
}

// Count returns the number of recorded borrows.
func (l *Ledger) Count() (int, error) {
	var n int
	if err := l.db.Get(&n, `SELECT COUNT(*) FROM checkouts`); err != nil {
		return 0, err
	}
	return n, nil
}

func buildCheckoutsQuery(filter CheckoutFilter) (string, []any, error) {
	ds := goqu.Dialect(dialectSQLite).
		From(tableCheckouts).
		Select(colSeq, colID, colMemberID, colMemberName, colBookID, colBookTitle, colBorrowedAt).
		Order(goqu.C(colSeq).Asc())

	if filter.MemberID != "" {
		ds = ds.Where(goqu.C(colMemberID).Eq(filter.MemberID))
	}
	if filter.BookID != "" {
		ds = ds.Where(goqu.C(colBookID).Eq(filter.BookID))
	}

	return ds.Prepared(true).ToSQL()
}
