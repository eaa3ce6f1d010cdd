package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"account-security-core/internal/apikey/domain"
	"account-security-core/internal/db"
)

type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository returns an API key repository that uses the given db for persistence.
func NewPostgresRepository(dbtx db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: dbtx}
}

// Scopes live in a TEXT[] column. The driver runs over database/sql, which has
// no array support, so queries convert at the boundary with array_to_string
// and string_to_array. Scope values therefore must not contain commas.
const apiKeyColumns = `id, user_id, name, key_digest, array_to_string(scopes, ','),
	expires_at, last_used_at, created_at`

// GetByID returns the key for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE id = $1`, id)
	return scanAPIKey(row)
}

// GetByDigest returns the key whose digest matches, or nil if not found.
func (r *PostgresRepository) GetByDigest(ctx context.Context, digest string) (*domain.APIKey, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE key_digest = $1`, digest)
	return scanAPIKey(row)
}

// ListByUser returns the user's keys, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string) ([]*domain.APIKey, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+apiKeyColumns+` FROM api_keys WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.APIKey
	for rows.Next() {
		k, err := scanAPIKeyRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, rows.Err()
}

// Create persists the key record. The key must have ID and digest set.
func (r *PostgresRepository) Create(ctx context.Context, k *domain.APIKey) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_keys (id, user_id, name, key_digest, scopes, expires_at, created_at)
		 VALUES ($1, $2, $3, $4, string_to_array($5, ','), $6, $7)`,
		k.ID, k.UserID, k.Name, k.KeyDigest, strings.Join(k.Scopes, ","), k.ExpiresAt, k.CreatedAt)
	return err
}

// Delete removes the key with the given id. Deleting a missing key is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM api_keys WHERE id = $1`, id)
	return err
}

// TouchLastUsed stamps last_used_at for the key.
func (r *PostgresRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE api_keys SET last_used_at = $2 WHERE id = $1`, id, at)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAPIKey(row *sql.Row) (*domain.APIKey, error) {
	k, err := scanAPIKeyRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return k, nil
}

func scanAPIKeyRow(row rowScanner) (*domain.APIKey, error) {
	var k domain.APIKey
	var scopes string
	err := row.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyDigest, &scopes,
		&k.ExpiresAt, &k.LastUsedAt, &k.CreatedAt)
	if err != nil {
		return nil, err
	}
	if scopes != "" {
		k.Scopes = strings.Split(scopes, ",")
	}
	return &k, nil
}
