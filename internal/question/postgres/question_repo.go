// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package postgres implements the question repositories on PostgreSQL.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"github.com/virtio/vtuber-quiz/internal/question"
	"github.com/virtio/vtuber-quiz/internal/store"
)

// QuestionRepository implements question.Repository using PostgreSQL.
type QuestionRepository struct {
	pool store.Pool
}

// NewQuestionRepository creates a QuestionRepository.
func NewQuestionRepository(pool store.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Create stores a new question and returns its id.
func (r *QuestionRepository) Create(ctx context.Context, q *question.Question) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx, `
		INSERT INTO questions (creator, description, choices, answer, type, audiences, draft)
		VALUES ($1, $2, $3, $4, $5::question_type, $6::audience[], $7)
		RETURNING id
	`,
		q.Creator,
		q.Description,
		q.Choices,
		q.Answer,
		string(q.Type),
		audienceStrings(q.Audiences),
		q.Draft,
	).Scan(&id)
	if err != nil {
		return 0, store.Failure("insert question", err)
	}
	return id, nil
}

// Get retrieves a question by id, drafts and soft-deleted rows included.
func (r *QuestionRepository) Get(ctx context.Context, id int32) (*question.Question, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, creator, description, choices, answer,
		       type::text, audiences::text[], draft, deleted, created, updated
		FROM questions
		WHERE id = $1
	`, id)

	q, err := scanQuestion(row)
	if err != nil {
		if store.IsNoRows(err) {
			return nil, oops.Code("QUESTION_NOT_FOUND").
				With("id", id).
				Wrap(question.ErrNotFound)
		}
		return nil, store.Failure("get question", err)
	}
	return q, nil
}

// Update persists the caller-mutable fields. Creator, type, and the
// soft-delete flag are deliberately absent from the statement.
func (r *QuestionRepository) Update(ctx context.Context, q *question.Question) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE questions SET
			description = $2,
			choices = $3,
			answer = $4,
			audiences = $5::audience[],
			draft = $6,
			updated = $7
		WHERE id = $1
	`,
		q.ID,
		q.Description,
		q.Choices,
		q.Answer,
		audienceStrings(q.Audiences),
		q.Draft,
		q.Updated,
	)
	if err != nil {
		return store.Failure("update question", err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("QUESTION_NOT_FOUND").
			With("id", q.ID).
			Wrap(question.ErrNotFound)
	}
	return nil
}

// Delete soft-deletes a question.
func (r *QuestionRepository) Delete(ctx context.Context, id int32) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE questions SET deleted = TRUE, updated = now()
		WHERE id = $1
	`, id)
	if err != nil {
		return store.Failure("delete question", err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("QUESTION_NOT_FOUND").
			With("id", id).
			Wrap(question.ErrNotFound)
	}
	return nil
}

// scanQuestion scans a single row into a Question. Callers handle
// pgx.ErrNoRows.
func scanQuestion(row pgx.Row) (*question.Question, error) {
	var (
		q         question.Question
		typeStr   string
		audiences []string
	)

	err := row.Scan(
		&q.ID,
		&q.Creator,
		&q.Description,
		&q.Choices,
		&q.Answer,
		&typeStr,
		&audiences,
		&q.Draft,
		&q.Deleted,
		&q.Created,
		&q.Updated,
	)
	if err != nil {
		return nil, err //nolint:wrapcheck // callers wrap with context
	}

	q.Type = question.Type(typeStr)
	q.Audiences = make([]question.Audience, len(audiences))
	for i, a := range audiences {
		q.Audiences[i] = question.Audience(a)
	}
	return &q, nil
}

func audienceStrings(audiences []question.Audience) []string {
	out := make([]string, len(audiences))
	for i, a := range audiences {
		out[i] = string(a)
	}
	return out
}

// Compile-time interface check.
var _ question.Repository = (*QuestionRepository)(nil)
