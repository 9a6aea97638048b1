// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtio/vtuber-quiz/internal/question"
)

func TestVoteRepository_Create(t *testing.T) {
	t.Run("appends a vote", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO votes`).
			WithArgs(int32(8), int32(11), "up_vote").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewVoteRepository(mock)
		assert.NoError(t, repo.Create(context.Background(), 8, 11, question.VoteUp))

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("repeat votes insert fresh rows", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO votes`).
			WithArgs(int32(8), int32(11), "down_vote").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectExec(`INSERT INTO votes`).
			WithArgs(int32(8), int32(11), "down_vote").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		repo := NewVoteRepository(mock)
		assert.NoError(t, repo.Create(context.Background(), 8, 11, question.VoteDown))
		assert.NoError(t, repo.Create(context.Background(), 8, 11, question.VoteDown))

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("storage failure", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`INSERT INTO votes`).
			WillReturnError(errors.New("connection refused"))

		repo := NewVoteRepository(mock)
		err = repo.Create(context.Background(), 8, 11, question.VoteUp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection refused")

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
