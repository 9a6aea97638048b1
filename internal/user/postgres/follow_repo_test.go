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
)

func TestFollowRepository_Create(t *testing.T) {
	tests := []struct {
		name      string
		setupMock func(mock pgxmock.PgxPoolIface)
		wantErr   bool
	}{
		{
			name: "successful insert",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO followings`).
					WithArgs(int32(1), int32(2), false).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "re-follow is a silent no-op",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO followings`).
					WithArgs(int32(1), int32(2), false).
					WillReturnError(uniqueViolation("followings_pkey"))
			},
		},
		{
			name: "storage failure",
			setupMock: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO followings`).
					WithArgs(int32(1), int32(2), false).
					WillReturnError(errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err, "failed to create mock")
			defer mock.Close()

			tt.setupMock(mock)

			repo := NewFollowRepository(mock)
			err = repo.Create(context.Background(), 1, 2, false)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		})
	}
}

func TestFollowRepository_Delete(t *testing.T) {
	t.Run("removes the pair", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM followings`).
			WithArgs(int32(1), int32(2)).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		repo := NewFollowRepository(mock)
		assert.NoError(t, repo.Delete(context.Background(), 1, 2))

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})

	t.Run("missing pair is a no-op", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err, "failed to create mock")
		defer mock.Close()

		mock.ExpectExec(`DELETE FROM followings`).
			WithArgs(int32(1), int32(2)).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		repo := NewFollowRepository(mock)
		assert.NoError(t, repo.Delete(context.Background(), 1, 2))

		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
	})
}
