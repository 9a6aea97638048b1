// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package postgres

import (
	"context"

	"github.com/virtio/vtuber-quiz/internal/question"
	"github.com/virtio/vtuber-quiz/internal/store"
)

// VoteRepository implements question.VoteRepository using PostgreSQL.
// The votes table is an append-only ledger: repeat votes from the same
// voter insert additional rows.
type VoteRepository struct {
	pool store.Pool
}

// NewVoteRepository creates a VoteRepository.
func NewVoteRepository(pool store.Pool) *VoteRepository {
	return &VoteRepository{pool: pool}
}

// Create appends a vote.
func (r *VoteRepository) Create(ctx context.Context, voter, questionID int32, action question.VoteAction) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO votes (voter, question, action)
		VALUES ($1, $2, $3::vote_action)
	`, voter, questionID, string(action))
	if err != nil {
		return store.Failure("insert vote", err)
	}
	return nil
}

// Compile-time interface check.
var _ question.VoteRepository = (*VoteRepository)(nil)
