// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package user implements accounts: registration and login, the follow
// graph, and challenge-code binding of external Bilibili accounts.
package user

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/samber/oops"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that start with a letter and contain only
// letters, numbers, and underscores.
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Domain outcomes. The postgres repositories translate storage signals into
// these; nothing above the repository layer sees a driver error.
var (
	ErrNotFound          = errors.New("user not found")
	ErrConflictUsername  = errors.New("username already taken")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrValidation        = errors.New("user validation failed")

	// ErrChallengeTaken signals a challenge-code uniqueness collision.
	// The issuer retries with a fresh code; it never reaches callers.
	ErrChallengeTaken = errors.New("challenge code already in use")
)

// Role describes the account kind.
type Role string

// Account roles.
const (
	RoleNormal Role = "normal"
	RoleVtuber Role = "vtuber"
)

// User is an account. PasswordHash and Challenge never serialize; they stay
// between the repositories and the services that own them.
type User struct {
	ID           int32     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Challenge    *string   `json:"-"`
	BilibiliUID  *int64    `json:"bilibili_uid,omitempty"`
	Role         Role      `json:"role"`
	Blocked      bool      `json:"blocked"`
	Reputation   int32     `json:"reputation"`
	Created      time.Time `json:"created"`
	Updated      time.Time `json:"updated"`
}

// ValidateUsername validates a username against the account rules.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Wrapf(ErrValidation, "username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("USER_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Wrapf(ErrValidation, "username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("USER_INVALID_USERNAME").
			Wrapf(ErrValidation, "username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// Repository manages account persistence.
type Repository interface {
	// Create stores a new account and returns its id.
	// A username conflict surfaces as ErrConflictUsername.
	Create(ctx context.Context, username, passwordHash string) (int32, error)

	// GetByID retrieves an account by id.
	GetByID(ctx context.Context, id int32) (*User, error)

	// GetByUsername retrieves an account by its exact username.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// SetChallenge persists a pending challenge code, replacing any
	// previous one. A code collision surfaces as ErrChallengeTaken.
	SetChallenge(ctx context.Context, id int32, code string) error

	// CompleteBinding records the verified external account id and clears
	// the pending challenge.
	CompleteBinding(ctx context.Context, id int32, bilibiliUID int64) error
}

// FollowRepository manages the follow graph.
type FollowRepository interface {
	// Create inserts a follow pair. Inserting an existing pair succeeds
	// silently.
	Create(ctx context.Context, follower, followee int32, private bool) error

	// Delete removes a follow pair. A missing pair is not an error.
	Delete(ctx context.Context, follower, followee int32) error
}
