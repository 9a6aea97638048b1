// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package postgres

import (
	"context"

	"github.com/virtio/vtuber-quiz/internal/store"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// FollowRepository implements user.FollowRepository using PostgreSQL.
type FollowRepository struct {
	pool store.Pool
}

// NewFollowRepository creates a FollowRepository.
func NewFollowRepository(pool store.Pool) *FollowRepository {
	return &FollowRepository{pool: pool}
}

// Create inserts a follow pair. The pair's primary key makes re-following
// a silent no-op: a uniqueness conflict is success.
func (r *FollowRepository) Create(ctx context.Context, follower, followee int32, private bool) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO followings (follower, followee, private)
		VALUES ($1, $2, $3)
	`, follower, followee, private)
	if err != nil {
		if store.IsUniqueViolation(err, "") {
			return nil
		}
		return store.Failure("insert following", err)
	}
	return nil
}

// Delete removes a follow pair. Deleting a pair that doesn't exist is a
// no-op.
func (r *FollowRepository) Delete(ctx context.Context, follower, followee int32) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM followings
		WHERE follower = $1 AND followee = $2
	`, follower, followee)
	if err != nil {
		return store.Failure("delete following", err)
	}
	return nil
}

// Compile-time interface check.
var _ user.FollowRepository = (*FollowRepository)(nil)
