// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/virtio/vtuber-quiz/internal/bilibili"
	"github.com/virtio/vtuber-quiz/internal/captcha"
	"github.com/virtio/vtuber-quiz/internal/question"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// Stable numeric codes surfaced to the transport layer. Internal storage
// detail (query text, constraint names, driver messages) never leaves this
// package; callers get a code and a short user message, nothing else.
const (
	CodeValidation        uint64 = 400100
	CodeInvalidCredential uint64 = 401000
	CodeUnauthorized      uint64 = 403000
	CodeNotFound          uint64 = 404000
	CodeConflictUsername  uint64 = 409100
	CodeCaptchaRejected   uint64 = 422100
	CodeUpstreamTransport uint64 = 502100
	CodeUpstream          uint64 = 502200
	CodeUpstreamMalformed uint64 = 502300
	CodeStorage           uint64 = 510000
)

// IsUniqueViolation reports whether err is a unique-constraint violation.
// With a non-empty constraint name it matches only that constraint, which
// is how the repositories tell a username conflict from a challenge-code
// collision on the same table.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

// IsNoRows reports whether err is a row-not-found result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// Failure wraps an unclassified storage error as an opaque storage failure.
// The wrapped chain keeps full detail for logging; NumericCode collapses it
// to CodeStorage at the boundary.
func Failure(operation string, err error) error {
	return oops.Code("STORAGE_FAILED").
		With("operation", operation).
		Wrap(err)
}

// NumericCode maps a domain error to its stable numeric code.
// Unrecognized errors, including everything wrapped by Failure, collapse to
// CodeStorage so no internal detail leaks through the code itself.
func NumericCode(err error) uint64 {
	switch {
	case errors.Is(err, user.ErrConflictUsername):
		return CodeConflictUsername
	case errors.Is(err, user.ErrInvalidCredential):
		return CodeInvalidCredential
	case errors.Is(err, user.ErrNotFound), errors.Is(err, question.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, question.ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, user.ErrValidation), errors.Is(err, question.ErrValidation):
		return CodeValidation
	case errors.Is(err, captcha.ErrRejected):
		return CodeCaptchaRejected
	case errors.Is(err, bilibili.ErrTransport):
		return CodeUpstreamTransport
	case errors.Is(err, bilibili.ErrUpstream):
		return CodeUpstream
	case errors.Is(err, bilibili.ErrMalformed):
		return CodeUpstreamMalformed
	default:
		return CodeStorage
	}
}

// UserMessage returns the caller-visible message for a numeric code.
func UserMessage(code uint64) string {
	switch code {
	case CodeValidation:
		return "validation failed"
	case CodeInvalidCredential:
		return "invalid username or password"
	case CodeUnauthorized:
		return "unauthorized"
	case CodeNotFound:
		return "not found"
	case CodeConflictUsername:
		return "username already taken"
	case CodeCaptchaRejected:
		return "captcha verification failed"
	case CodeUpstreamTransport:
		return "upstream service unreachable"
	case CodeUpstream:
		return "upstream service error"
	case CodeUpstreamMalformed:
		return "unexpected upstream response"
	default:
		return "internal error"
	}
}

// Retryable reports whether the caller may usefully retry the failed
// operation: transport-level upstream failures are retryable, everything
// else in the taxonomy is not.
func Retryable(err error) bool {
	return errors.Is(err, bilibili.ErrTransport)
}
