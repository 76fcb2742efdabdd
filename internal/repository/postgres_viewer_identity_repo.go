package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresViewerIdentityRepo はPostgreSQLを使用した閲覧者Identityリポジトリ。
type PostgresViewerIdentityRepo struct {
	db *sql.DB
}

// NewPostgresViewerIdentityRepo はPostgresViewerIdentityRepoを生成する。
func NewPostgresViewerIdentityRepo(db *sql.DB) *PostgresViewerIdentityRepo {
	return &PostgresViewerIdentityRepo{db: db}
}

// Find は指定キーのメールアドレスを取得する。
// キーがUUIDとして不正な場合や期限切れの場合は空文字列を返す。
func (r *PostgresViewerIdentityRepo) Find(ctx context.Context, key string) (string, error) {
	if _, err := uuid.Parse(key); err != nil {
		return "", nil
	}

	var email string
	err := r.db.QueryRowContext(ctx,
		`SELECT email FROM viewer_identities
		 WHERE id = $1 AND expires_at > now()`,
		key,
	).Scan(&email)

	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find viewer identity: %w", err)
	}
	return email, nil
}

// Save はメールアドレスをUPSERTする。
func (r *PostgresViewerIdentityRepo) Save(ctx context.Context, key, email string, expiresAt time.Time) error {
	if _, err := uuid.Parse(key); err != nil {
		return fmt.Errorf("invalid viewer identity key: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO viewer_identities (id, email, expires_at, created_at, updated_at)
		 VALUES ($1, $2, $3, now(), now())
		 ON CONFLICT (id) DO UPDATE
		 SET email = EXCLUDED.email,
		     expires_at = EXCLUDED.expires_at,
		     updated_at = now()`,
		key, email, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save viewer identity: %w", err)
	}
	return nil
}

// Delete は指定キーの行を削除する。不正なキーは何もしない。
func (r *PostgresViewerIdentityRepo) Delete(ctx context.Context, key string) error {
	if _, err := uuid.Parse(key); err != nil {
		return nil
	}

	_, err := r.db.ExecContext(ctx,
		`DELETE FROM viewer_identities WHERE id = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete viewer identity: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れの行を削除する。
func (r *PostgresViewerIdentityRepo) DeleteExpired(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM viewer_identities WHERE expires_at < now()`,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired viewer identities: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ ViewerIdentityRepository = (*PostgresViewerIdentityRepo)(nil)
