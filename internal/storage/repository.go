package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"

	"salesplot/internal/core"
	"salesplot/internal/sources"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

var (
	_ sources.TransactionReader = (*SQLiteRepository)(nil)
	_ sources.TransactionWriter = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const insertTransaction = `INSERT INTO transactions
    (order_id, date, item_name, item_type, item_price, quantity, transaction_amount, transaction_type, received_by, time_of_sale)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// ImportTransactions implements sources.TransactionWriter. All rows are
// written in a single transaction.
func (r *SQLiteRepository) ImportTransactions(ctx context.Context, t core.Table) (int, error) {
	_, n, err := r.writeTransactions(ctx, t, false)
	return n, err
}

// ReplaceTransactions deletes every stored transaction and writes t in the
// same transaction. On error the previous rows are kept.
func (r *SQLiteRepository) ReplaceTransactions(ctx context.Context, t core.Table) (removed int64, inserted int, err error) {
	return r.writeTransactions(ctx, t, true)
}

func (r *SQLiteRepository) writeTransactions(ctx context.Context, t core.Table, replace bool) (int64, int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	var removed int64
	if replace {
		res, err := tx.ExecContext(ctx, `DELETE FROM transactions`)
		if err != nil {
			return 0, 0, fmt.Errorf("delete transactions: %w", err)
		}
		if removed, err = res.RowsAffected(); err != nil {
			return 0, 0, fmt.Errorf("rows affected: %w", err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, insertTransaction)
	if err != nil {
		return 0, 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, row := range t.Rows() {
		if _, err := stmt.ExecContext(ctx,
			row.OrderID,
			row.RawDate,
			row.ItemName,
			row.ItemType,
			row.ItemPrice.String(),
			row.Quantity,
			row.Amount.String(),
			row.TransactionType,
			row.ReceivedBy,
			row.TimeOfSale,
		); err != nil {
			return 0, 0, fmt.Errorf("insert row %d: %w", n+1, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import: %w", err)
	}

	slog.InfoContext(ctx, "Transactions imported to SQLite", "rows", n, "replaced", removed)
	return removed, n, nil
}

// ReadTransactions implements sources.TransactionReader.
func (r *SQLiteRepository) ReadTransactions(ctx context.Context) (core.Table, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT order_id, date, item_name, item_type, item_price, quantity,
    transaction_amount, transaction_type, received_by, time_of_sale
FROM transactions ORDER BY id`)
	if err != nil {
		return core.Table{}, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		var (
			t             core.Transaction
			price, amount string
		)
		if err := rows.Scan(&t.OrderID, &t.RawDate, &t.ItemName, &t.ItemType, &price, &t.Quantity,
			&amount, &t.TransactionType, &t.ReceivedBy, &t.TimeOfSale); err != nil {
			return core.Table{}, fmt.Errorf("scan transaction: %w", err)
		}
		if t.ItemPrice, err = decimal.NewFromString(price); err != nil {
			return core.Table{}, fmt.Errorf("item_price %q: %w", price, err)
		}
		if t.Amount, err = decimal.NewFromString(amount); err != nil {
			return core.Table{}, fmt.Errorf("transaction_amount %q: %w", amount, err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return core.Table{}, fmt.Errorf("iterate transactions: %w", err)
	}

	return core.NewTable(out), nil
}

// DeleteAll removes every stored transaction and returns how many were removed.
func (r *SQLiteRepository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions`)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	slog.InfoContext(ctx, "Transactions cleared", "rows", n)
	return n, nil
}

// Count returns the number of stored transactions.
func (r *SQLiteRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return n, nil
}
