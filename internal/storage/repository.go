// Package storage implements the durable ledger store on SQLite. Every
// mutating ledger operation runs as a single database transaction so a
// record write and its paired balance adjustment commit or roll back
// together; balance changes are expressed as in-place increments, never as
// a read followed by a write.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"finledger/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
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

// withTx runs fn inside one database transaction, rolling back on any error.
func (r *SQLiteRepository) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// --- accounts ---

func (r *SQLiteRepository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO accounts (user_id, name, type, balance_cents, institution, account_number)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, name, type, balance_cents, institution, account_number, created_at, updated_at`,
		a.UserID, a.Name, string(a.Type), core.Cents(a.Balance), a.Institution, a.AccountNumber)

	created, err := scanAccount(row)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", err)
	}
	return created, nil
}

func (r *SQLiteRepository) GetAccount(ctx context.Context, userID, id int64) (core.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, institution, account_number, created_at, updated_at
		FROM accounts WHERE id = ? AND user_id = ?`, id, userID)

	a, err := scanAccount(row)
	if err == sql.ErrNoRows {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) ListAccounts(ctx context.Context, userID int64) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, name, type, balance_cents, institution, account_number, created_at, updated_at
		FROM accounts WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []core.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountUpdate carries the optional metadata fields of an account patch.
// The balance is deliberately absent: balances change only through the
// transaction mutation path.
type AccountUpdate struct {
	Name          *string
	Type          *core.AccountType
	Institution   *string
	AccountNumber *string
}

func (r *SQLiteRepository) UpdateAccount(ctx context.Context, userID, id int64, upd AccountUpdate) (core.Account, error) {
	var updated core.Account
	err := r.withTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT id, user_id, name, type, balance_cents, institution, account_number, created_at, updated_at
			FROM accounts WHERE id = ? AND user_id = ?`, id, userID)
		a, err := scanAccount(row)
		if err == sql.ErrNoRows {
			return core.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("load account: %w", err)
		}

		if upd.Name != nil {
			a.Name = *upd.Name
		}
		if upd.Type != nil {
			a.Type = *upd.Type
		}
		if upd.Institution != nil {
			a.Institution = *upd.Institution
		}
		if upd.AccountNumber != nil {
			a.AccountNumber = *upd.AccountNumber
		}

		row = tx.QueryRowContext(ctx, `
			UPDATE accounts
			SET name = ?, type = ?, institution = ?, account_number = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND user_id = ?
			RETURNING id, user_id, name, type, balance_cents, institution, account_number, created_at, updated_at`,
			a.Name, string(a.Type), a.Institution, a.AccountNumber, id, userID)
		updated, err = scanAccount(row)
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
		return nil
	})
	if err != nil {
		return core.Account{}, err
	}
	return updated, nil
}

// DeleteAccount removes an account and everything it owns. It refuses to
// discard unreconciled value: the balance must be exactly zero.
func (r *SQLiteRepository) DeleteAccount(ctx context.Context, userID, id int64) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		var balanceCents int64
		err := tx.QueryRowContext(ctx,
			`SELECT balance_cents FROM accounts WHERE id = ? AND user_id = ?`, id, userID).
			Scan(&balanceCents)
		if err == sql.ErrNoRows {
			return core.ErrAccountNotFound
		}
		if err != nil {
			return fmt.Errorf("load account balance: %w", err)
		}
		if balanceCents != 0 {
			return core.ErrInsufficientBalance
		}

		// Cascade by hand so the delete does not depend on connection pragmas.
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE account_id = ?`, id); err != nil {
			return fmt.Errorf("delete account transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM recurring_transactions WHERE account_id = ?`, id); err != nil {
			return fmt.Errorf("delete account recurring transactions: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM accounts WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete account: %w", err)
		}
		return nil
	})
}

// TotalAssetsCents sums the balances of every account owned by userID.
func (r *SQLiteRepository) TotalAssetsCents(ctx context.Context, userID int64) (int64, error) {
	var total sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT SUM(balance_cents) FROM accounts WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum account balances: %w", err)
	}
	return total.Int64, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (core.Account, error) {
	var (
		a            core.Account
		accountType  string
		balanceCents int64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Name, &accountType, &balanceCents,
		&a.Institution, &a.AccountNumber, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return core.Account{}, err
	}
	a.Type = core.AccountType(accountType)
	a.Balance = core.FromCents(balanceCents)
	return a, nil
}
