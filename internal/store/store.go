// Package store is the query façade over the team, channel, member and message
// relations. It is the only place that talks SQL and the boundary where driver
// errors become apperrors kinds.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/nikhil/teamchat/internal/apperrors"
	"github.com/nikhil/teamchat/internal/logger"
)

// MySQL server error numbers.
const (
	mysqlDuplicateEntry     = 1062
	mysqlRowIsReferenced    = 1451
	mysqlNoReferencedRow    = 1452
	mysqlNoReferencedRowOld = 1216
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store handles persistence for teams, channels, members and messages.
type Store struct {
	db  *sql.DB
	log *logger.Logger
	now func() int64
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the millisecond clock used for created_at columns.
func WithClock(now func() int64) Option {
	return func(s *Store) { s.now = now }
}

// New creates a store over an open database.
func New(db *sql.DB, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		db:  db,
		log: log,
		now: func() int64 { return time.Now().UTC().UnixMilli() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB exposes the underlying pool.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx is a unit of work. It is only valid inside the WithTx callback.
type Tx struct {
	tx  *sql.Tx
	now func() int64
}

// WithTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; every other exit, panics included, rolls back.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.TransactionFailure(fmt.Errorf("begin transaction: %w", err))
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := sqlTx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.log.Error("Failed to roll back transaction", "error", rbErr)
		}
	}()

	if err := fn(&Tx{tx: sqlTx, now: s.now}); err != nil {
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return apperrors.TransactionFailure(fmt.Errorf("commit transaction: %w", err))
	}
	committed = true
	return nil
}

// translate converts driver errors into the apperrors taxonomy. Unknown
// errors are wrapped with op and stay unclassified.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.NotFound("", "not found", fmt.Errorf("%s: %w", op, err))
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlDuplicateEntry:
			return apperrors.Conflict("", "already exists", fmt.Errorf("%s: %w", op, err))
		case mysqlNoReferencedRow, mysqlNoReferencedRowOld, mysqlRowIsReferenced:
			return apperrors.NotFound("", "referenced record does not exist", fmt.Errorf("%s: %w", op, err))
		}
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return apperrors.Conflict("", "already exists", fmt.Errorf("%s: %w", op, err))
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return apperrors.NotFound("", "referenced record does not exist", fmt.Errorf("%s: %w", op, err))
		}
	}

	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
