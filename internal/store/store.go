package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"pos-service/internal/apperr"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

// ErrTokenTaken is returned when an order token was already issued for the day
var ErrTokenTaken = errors.New("order token already issued today")

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
	checkViolation      = "23514"
)

// Store owns the connection pool. Its embedded Queries run on the pool;
// InTx hands a transaction-bound Queries to the callback.
type Store struct {
	*Queries
	db *sqlx.DB
}

// Queries runs statements against either the pool or a transaction
type Queries struct {
	q sqlx.ExtContext
}

// NewStore creates a new database store
func NewStore(databaseURL string) (*Store, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return NewStoreFromDB(db), nil
}

// NewStoreFromDB wraps an already opened connection pool
func NewStoreFromDB(db *sqlx.DB) *Store {
	return &Store{Queries: &Queries{q: db}, db: db}
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database answers
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.db.GetContext(ctx, &one, "SELECT 1"); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Migrate creates the schema when it does not exist yet
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// InTx runs fn inside a transaction. The transaction commits only when fn
// returns nil and is rolled back on every other path.
func (s *Store) InTx(ctx context.Context, fn func(q Querier) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&Queries{q: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", classify(err))
	}
	return nil
}

// classify maps driver errors onto the package sentinels and apperr kinds
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		switch pqErr.Constraint {
		case "uq_orders_token_per_day":
			return ErrTokenTaken
		case "uq_customers_phone":
			return conflict("Phone number already exists", err)
		case "uq_payments_order":
			return conflict("Payment already processed for this order", err)
		}
		return conflict("Record already exists", err)
	case foreignKeyViolation:
		switch pqErr.Constraint {
		case "fk_order_items_menu":
			return conflict("Menu item is referenced by existing orders", err)
		case "fk_orders_customer":
			return conflict("Customer has existing orders", err)
		}
		return conflict("Record is referenced by other records", err)
	case checkViolation:
		return &apperr.Error{Kind: apperr.KindValidation, Message: "Value violates constraint " + pqErr.Constraint, Err: err}
	}
	return err
}

func conflict(message string, err error) error {
	return &apperr.Error{Kind: apperr.KindConflict, Message: message, Err: err}
}

// expectAffected turns a zero-row update or delete into ErrNotFound
func expectAffected(res sql.Result, err error) error {
	if err != nil {
		return classify(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
