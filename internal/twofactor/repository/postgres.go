package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"account-security-core/internal/db"
	"account-security-core/internal/errs"
	"account-security-core/internal/twofactor/domain"
)

// uniqueViolation is the Postgres error code for unique constraint violations.
const uniqueViolation = "23505"

// Constraint names from the schema; unique violations are told apart by them.
const (
	userTypeConstraint   = "two_factor_methods_user_type_key"
	onePrimaryConstraint = "idx_two_factor_methods_one_primary"
)

// errPrimaryRace signals that a concurrent insert won the first-is-primary
// election; the losing insert is retried as non-primary.
var errPrimaryRace = errors.New("lost first-is-primary election")

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a two-factor method repository over the given db.
// It takes *sql.DB rather than DBTX because primary-flag and account-flag
// maintenance needs its own transactions.
func NewPostgresRepository(sdb *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: sdb}
}

const methodColumns = `id, user_id, type, secret, is_primary, created_at`

// GetByID returns the method for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Method, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+methodColumns+` FROM two_factor_methods WHERE id = $1`, id)
	return scanMethod(row)
}

// ListByUser returns the user's methods, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Method, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+methodColumns+` FROM two_factor_methods
		 WHERE user_id = $1 ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Method
	for rows.Next() {
		var m domain.Method
		if err := rows.Scan(&m.ID, &m.UserID, &m.Type, &m.Secret, &m.IsPrimary, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// Create persists the method and raises the account's two_factor_enabled flag
// in the same transaction. The first method of a user becomes primary; a
// duplicate type for the same user yields errs.ErrConflict. Two concurrent
// first inserts of different types race on the one-primary index, and the
// loser is retried as non-primary.
func (r *PostgresRepository) Create(ctx context.Context, m *domain.Method) error {
	err := r.create(ctx, m, false)
	if errors.Is(err, errPrimaryRace) {
		err = r.create(ctx, m, true)
	}
	return err
}

func (r *PostgresRepository) create(ctx context.Context, m *domain.Method, forceNonPrimary bool) error {
	return db.WithinTx(ctx, r.db, func(tx db.DBTX) error {
		if forceNonPrimary {
			m.IsPrimary = false
		} else {
			var hasAny bool
			err := tx.QueryRowContext(ctx,
				`SELECT EXISTS (SELECT 1 FROM two_factor_methods WHERE user_id = $1)`,
				m.UserID).Scan(&hasAny)
			if err != nil {
				return err
			}
			m.IsPrimary = !hasAny
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO two_factor_methods (id, user_id, type, secret, is_primary, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			m.ID, m.UserID, m.Type, m.Secret, m.IsPrimary, m.CreatedAt)
		if err != nil {
			return classifyInsertError(err, m.Type)
		}
		return setAccountFlag(ctx, tx, m.UserID, true)
	})
}

// classifyInsertError tells the two unique constraints on the table apart: the
// (user_id, type) key means the user already has this method type, while the
// partial one-primary index only fires when a concurrent insert won the
// primary election.
func classifyInsertError(err error, methodType domain.MethodType) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if pgErr.ConstraintName == onePrimaryConstraint {
		return errPrimaryRace
	}
	return fmt.Errorf("%w: method of type %s already configured", errs.ErrConflict, methodType)
}

// Remove deletes the method and, when it was the primary, promotes the most
// recently created remaining method of the same user. When no method remains,
// the account's two_factor_enabled flag is cleared. All of it is one
// transaction, so readers never see a method set that disagrees with the flag.
func (r *PostgresRepository) Remove(ctx context.Context, id string) error {
	return db.WithinTx(ctx, r.db, func(tx db.DBTX) error {
		var userID string
		var wasPrimary bool
		err := tx.QueryRowContext(ctx,
			`DELETE FROM two_factor_methods WHERE id = $1 RETURNING user_id, is_primary`,
			id).Scan(&userID, &wasPrimary)
		if errors.Is(err, sql.ErrNoRows) {
			return errs.ErrNotFound
		}
		if err != nil {
			return err
		}
		if wasPrimary {
			_, err = tx.ExecContext(ctx,
				`UPDATE two_factor_methods SET is_primary = TRUE
				 WHERE id = (
					SELECT id FROM two_factor_methods
					WHERE user_id = $1
					ORDER BY created_at DESC, id DESC
					LIMIT 1
				 )`, userID)
			if err != nil {
				return err
			}
		}
		var remaining bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM two_factor_methods WHERE user_id = $1)`,
			userID).Scan(&remaining)
		if err != nil {
			return err
		}
		if remaining {
			return nil
		}
		return setAccountFlag(ctx, tx, userID, false)
	})
}

// SetPrimary makes the method primary, demoting the previous one atomically.
// Returns errs.ErrNotFound when the method does not belong to the user.
func (r *PostgresRepository) SetPrimary(ctx context.Context, userID, id string) error {
	return db.WithinTx(ctx, r.db, func(tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`UPDATE two_factor_methods SET is_primary = FALSE
			 WHERE user_id = $1 AND is_primary`, userID)
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx,
			`UPDATE two_factor_methods SET is_primary = TRUE
			 WHERE id = $1 AND user_id = $2`, id, userID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return errs.ErrNotFound
		}
		return nil
	})
}

// DeleteAllByUser removes every method of the user and clears the account's
// two_factor_enabled flag in the same transaction.
func (r *PostgresRepository) DeleteAllByUser(ctx context.Context, userID string) error {
	return db.WithinTx(ctx, r.db, func(tx db.DBTX) error {
		_, err := tx.ExecContext(ctx,
			`DELETE FROM two_factor_methods WHERE user_id = $1`, userID)
		if err != nil {
			return err
		}
		return setAccountFlag(ctx, tx, userID, false)
	})
}

// setAccountFlag keeps users.two_factor_enabled in step with the method set.
// It runs inside the caller's transaction so the flag and the methods commit
// or roll back together.
func setAccountFlag(ctx context.Context, tx db.DBTX, userID string, enabled bool) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE users SET two_factor_enabled = $2, updated_at = $3 WHERE id = $1`,
		userID, enabled, time.Now().UTC())
	return err
}

func scanMethod(row *sql.Row) (*domain.Method, error) {
	var m domain.Method
	err := row.Scan(&m.ID, &m.UserID, &m.Type, &m.Secret, &m.IsPrimary, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
