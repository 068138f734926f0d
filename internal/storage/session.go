package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Veraticus/finchat/internal/model"
)

// Fixed, versionless keys of the two persisted entries.
const (
	TokenKey = "@finchat_token"
	UserKey  = "@finchat_user"
)

// SaveCredential stores the credential, replacing any previous one.
func (s *SQLiteStorage) SaveCredential(ctx context.Context, cred model.Credential) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(cred.Token, "token"); err != nil {
		return err
	}
	return s.putJSON(ctx, TokenKey, cred)
}

// ReadCredential returns the stored credential. An absent credential is a
// zero value and a nil error.
func (s *SQLiteStorage) ReadCredential(ctx context.Context) (model.Credential, error) {
	if err := validateContext(ctx); err != nil {
		return model.Credential{}, err
	}

	var cred model.Credential
	if _, err := s.getJSON(ctx, TokenKey, &cred); err != nil {
		return model.Credential{}, err
	}
	return cred, nil
}

// SaveUser stores the minimal user identity.
func (s *SQLiteStorage) SaveUser(ctx context.Context, user model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.putJSON(ctx, UserKey, user)
}

// ReadUser returns the stored identity and whether one was present.
func (s *SQLiteStorage) ReadUser(ctx context.Context) (model.User, bool, error) {
	if err := validateContext(ctx); err != nil {
		return model.User{}, false, err
	}

	var user model.User
	found, err := s.getJSON(ctx, UserKey, &user)
	if err != nil {
		return model.User{}, false, err
	}
	return user, found, nil
}

// ClearSession removes the credential and user identity in one transaction.
func (s *SQLiteStorage) ClearSession(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key IN (?, ?)`, TokenKey, UserKey); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session clear: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) putJSON(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO session_kv (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, string(data))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStorage) getJSON(ctx context.Context, key string, v any) (bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM session_kv WHERE key = ?`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}
