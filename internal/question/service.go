// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package question

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"

	"github.com/virtio/vtuber-quiz/internal/observability"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// UserDirectory is the slice of the user service the question service
// needs: role lookups for vtuber applications.
type UserDirectory interface {
	GetByID(ctx context.Context, id int32) (*user.User, error)
}

// CreationRequest carries the caller-settable fields of a new question.
type CreationRequest struct {
	Description string     `json:"description"`
	Choices     []string   `json:"choices"`
	Answer      []int32    `json:"answer"`
	Type        Type       `json:"type"`
	Audiences   []Audience `json:"audiences"`
	Draft       bool       `json:"draft"`
}

// Update carries the caller-mutable fields of an existing question.
// Identifier, creator, type, and the soft-delete flag are immutable via
// update; values supplied for them are silently ignored.
type Update struct {
	Description string     `json:"description"`
	Choices     []string   `json:"choices"`
	Answer      []int32    `json:"answer"`
	Audiences   []Audience `json:"audiences"`
	Draft       bool       `json:"draft"`
}

// Service provides question lifecycle, voting, and application operations.
type Service struct {
	questions Repository
	votes     VoteRepository
	apps      ApplicationRepository
	users     UserDirectory
	logger    *slog.Logger
}

// NewService creates a question Service.
func NewService(questions Repository, votes VoteRepository, apps ApplicationRepository, users UserDirectory, logger *slog.Logger) (*Service, error) {
	if questions == nil {
		return nil, oops.Errorf("question repository is required")
	}
	if votes == nil {
		return nil, oops.Errorf("vote repository is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		questions: questions,
		votes:     votes,
		apps:      apps,
		users:     users,
		logger:    logger,
	}, nil
}

// Create validates and stores a new question for the creator.
func (s *Service) Create(ctx context.Context, creator int32, req CreationRequest) (*Question, error) {
	now := time.Now().UTC()
	q := &Question{
		Creator:     creator,
		Description: req.Description,
		Choices:     req.Choices,
		Answer:      req.Answer,
		Type:        req.Type,
		Audiences:   req.Audiences,
		Draft:       req.Draft,
		Created:     now,
		Updated:     now,
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	id, err := s.questions.Create(ctx, q)
	if err != nil {
		return nil, err
	}
	q.ID = id
	return q, nil
}

// Get retrieves a question as seen by viewer. Soft-deleted questions are
// indistinguishable from absent ones for everybody; drafts are visible only
// to their creator. Pass viewer 0 for an unauthenticated caller.
func (s *Service) Get(ctx context.Context, viewer, id int32) (*Question, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Deleted || (q.Draft && q.Creator != viewer) {
		return nil, oops.Code("QUESTION_NOT_FOUND").
			With("id", id).
			Wrap(ErrNotFound)
	}
	return q, nil
}

// Update applies the caller-mutable fields. Only the creator may update;
// anyone else gets ErrUnauthorized, deliberately distinct from NotFound so
// "not yours" and "doesn't exist" stay separate outcomes for existing
// questions. The update timestamp is always server-set.
func (s *Service) Update(ctx context.Context, caller, id int32, upd Update) (*Question, error) {
	origin, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if origin.Deleted {
		return nil, oops.Code("QUESTION_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if origin.Creator != caller {
		return nil, oops.Code("QUESTION_UNAUTHORIZED").
			With("id", id).
			Wrap(ErrUnauthorized)
	}

	next := *origin
	next.Description = upd.Description
	next.Choices = upd.Choices
	next.Answer = upd.Answer
	next.Audiences = upd.Audiences
	next.Draft = upd.Draft
	next.Updated = time.Now().UTC()

	if err := next.Validate(); err != nil {
		return nil, err
	}

	if err := s.questions.Update(ctx, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

// Delete soft-deletes a question. Creator only.
func (s *Service) Delete(ctx context.Context, caller, id int32) error {
	origin, err := s.questions.Get(ctx, id)
	if err != nil {
		return err
	}
	if origin.Deleted {
		return oops.Code("QUESTION_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if origin.Creator != caller {
		return oops.Code("QUESTION_UNAUTHORIZED").
			With("id", id).
			Wrap(ErrUnauthorized)
	}
	return s.questions.Delete(ctx, id)
}

// Vote records a vote on a question. Creators cannot vote on their own
// questions, and drafts and soft-deleted questions take no votes; those are
// validation failures, not NotFound, because the caller has already found
// the question. Repeat votes stack; deduplication is deliberately not this
// component's job.
func (s *Service) Vote(ctx context.Context, voter, id int32, action string) error {
	act, err := ParseVoteAction(action)
	if err != nil {
		return err
	}

	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return err
	}
	switch {
	case q.Creator == voter:
		return oops.Code("VOTE_OWN_QUESTION").
			Wrapf(ErrValidation, "cannot vote on your own question")
	case q.Draft:
		return oops.Code("VOTE_DRAFT").
			Wrapf(ErrValidation, "cannot vote on a draft question")
	case q.Deleted:
		return oops.Code("VOTE_DELETED").
			Wrapf(ErrValidation, "cannot vote on a deleted question")
	}

	if err := s.votes.Create(ctx, voter, id, act); err != nil {
		return err
	}
	observability.RecordVote(string(act))
	return nil
}

// Apply marks a question as applying to a vtuber account. Creator only;
// the target must hold the vtuber role. Re-applying is a no-op.
func (s *Service) Apply(ctx context.Context, caller, id, vtuberID int32) error {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.Deleted {
		return oops.Code("QUESTION_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if q.Creator != caller {
		return oops.Code("QUESTION_UNAUTHORIZED").With("id", id).Wrap(ErrUnauthorized)
	}

	target, err := s.users.GetByID(ctx, vtuberID)
	if err != nil {
		return err
	}
	if target.Role != user.RoleVtuber {
		return oops.Code("APPLY_NOT_VTUBER").
			With("target", vtuberID).
			Wrapf(ErrValidation, "target account is not a vtuber")
	}

	return s.apps.Create(ctx, id, vtuberID)
}

// Remove withdraws a question's application to a vtuber. Creator only.
func (s *Service) Remove(ctx context.Context, caller, id, vtuberID int32) error {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return err
	}
	if q.Deleted {
		return oops.Code("QUESTION_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	if q.Creator != caller {
		return oops.Code("QUESTION_UNAUTHORIZED").With("id", id).Wrap(ErrUnauthorized)
	}

	target, err := s.users.GetByID(ctx, vtuberID)
	if err != nil {
		return err
	}
	if target.Role != user.RoleVtuber {
		return oops.Code("APPLY_NOT_VTUBER").
			With("target", vtuberID).
			Wrapf(ErrValidation, "target account is not a vtuber")
	}

	return s.apps.Delete(ctx, id, vtuberID)
}

// Applied lists the vtuber ids a question applies to. Drafts and deleted
// questions surface as NotFound.
func (s *Service) Applied(ctx context.Context, id int32) ([]int32, error) {
	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Draft || q.Deleted {
		return nil, oops.Code("QUESTION_NOT_FOUND").With("id", id).Wrap(ErrNotFound)
	}
	return s.apps.List(ctx, id)
}
