// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package postgres implements the user repositories on PostgreSQL.
package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/virtio/vtuber-quiz/internal/store"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// Uniqueness constraints the translator routes on. The database, not the
// application, arbitrates races on usernames and challenge codes.
const (
	usernameConstraint  = "users_username_key"
	challengeConstraint = "users_challenge_key"
)

// UserRepository implements user.Repository using PostgreSQL.
type UserRepository struct {
	pool store.Pool
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(pool store.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// Create stores a new account and returns its id.
func (r *UserRepository) Create(ctx context.Context, username, passwordHash string) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, password)
		VALUES ($1, $2)
		RETURNING id
	`, username, passwordHash).Scan(&id)
	if err != nil {
		if store.IsUniqueViolation(err, usernameConstraint) {
			return 0, oops.Code("USER_CONFLICT_USERNAME").
				With("username", username).
				Wrap(user.ErrConflictUsername)
		}
		return 0, store.Failure("insert user", err)
	}
	return id, nil
}

// GetByID retrieves an account by id.
func (r *UserRepository) GetByID(ctx context.Context, id int32) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password, challenge, bilibili_uid,
		       role, blocked, reputation, created, updated
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if err != nil {
		if store.IsNoRows(err) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("id", id).
				Wrap(user.ErrNotFound)
		}
		return nil, store.Failure("get user by id", err)
	}
	return u, nil
}

// GetByUsername retrieves an account by its exact username.
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, username, password, challenge, bilibili_uid,
		       role, blocked, reputation, created, updated
		FROM users
		WHERE username = $1
	`, username)

	u, err := scanUser(row)
	if err != nil {
		if store.IsNoRows(err) {
			return nil, oops.Code("USER_NOT_FOUND").
				With("username", username).
				Wrap(user.ErrNotFound)
		}
		return nil, store.Failure("get user by username", err)
	}
	return u, nil
}

// SetChallenge persists a pending challenge code, replacing any previous
// one. A collision with another account's code surfaces as
// user.ErrChallengeTaken so the issuer can draw again.
func (r *UserRepository) SetChallenge(ctx context.Context, id int32, code string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET challenge = $2, updated = now()
		WHERE id = $1
	`, id, code)
	if err != nil {
		if store.IsUniqueViolation(err, challengeConstraint) {
			return oops.Code("USER_CHALLENGE_TAKEN").Wrap(user.ErrChallengeTaken)
		}
		return store.Failure("set challenge", err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(user.ErrNotFound)
	}
	return nil
}

// CompleteBinding records the verified Bilibili uid and clears the pending
// challenge in one statement.
func (r *UserRepository) CompleteBinding(ctx context.Context, id int32, bilibiliUID int64) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE users SET bilibili_uid = $2, challenge = NULL, updated = now()
		WHERE id = $1
	`, id, bilibiliUID)
	if err != nil {
		return store.Failure("complete binding", err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("USER_NOT_FOUND").
			With("id", id).
			Wrap(user.ErrNotFound)
	}
	return nil
}

// scanUser scans a single row into a User. Callers handle pgx.ErrNoRows.
func scanUser(row pgx.Row) (*user.User, error) {
	var (
		u        user.User
		roleStr  string
		created  time.Time
		updated  time.Time
	)

	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.Challenge,
		&u.BilibiliUID,
		&roleStr,
		&u.Blocked,
		&u.Reputation,
		&created,
		&updated,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	u.Role = user.Role(roleStr)
	u.Created = created
	u.Updated = updated
	return &u, nil
}

// Compile-time interface check.
var _ user.Repository = (*UserRepository)(nil)
