// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package postgres

import (
	"context"

	"github.com/virtio/vtuber-quiz/internal/question"
	"github.com/virtio/vtuber-quiz/internal/store"
)

// ApplicationRepository implements question.ApplicationRepository using
// PostgreSQL.
type ApplicationRepository struct {
	pool store.Pool
}

// NewApplicationRepository creates an ApplicationRepository.
func NewApplicationRepository(pool store.Pool) *ApplicationRepository {
	return &ApplicationRepository{pool: pool}
}

// Create inserts an application pair. Like follows, the composite primary
// key makes re-applying a silent no-op.
func (r *ApplicationRepository) Create(ctx context.Context, questionID, vtuberID int32) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO question_applications (question, vtuber)
		VALUES ($1, $2)
	`, questionID, vtuberID)
	if err != nil {
		if store.IsUniqueViolation(err, "") {
			return nil
		}
		return store.Failure("insert question application", err)
	}
	return nil
}

// Delete removes an application pair. Absence is not an error.
func (r *ApplicationRepository) Delete(ctx context.Context, questionID, vtuberID int32) error {
	_, err := r.pool.Exec(ctx, `
		DELETE FROM question_applications
		WHERE question = $1 AND vtuber = $2
	`, questionID, vtuberID)
	if err != nil {
		return store.Failure("delete question application", err)
	}
	return nil
}

// List returns the vtuber ids a question applies to.
func (r *ApplicationRepository) List(ctx context.Context, questionID int32) ([]int32, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT vtuber FROM question_applications
		WHERE question = $1
		ORDER BY vtuber
	`, questionID)
	if err != nil {
		return nil, store.Failure("list question applications", err)
	}
	defer rows.Close()

	var vtubers []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, store.Failure("scan question application", err)
		}
		vtubers = append(vtubers, id)
	}
	if err := rows.Err(); err != nil {
		return nil, store.Failure("iterate question applications", err)
	}

	return vtubers, nil
}

// Compile-time interface check.
var _ question.ApplicationRepository = (*ApplicationRepository)(nil)
