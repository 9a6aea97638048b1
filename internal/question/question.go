// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package question implements user-authored quiz questions: per-type
// structural validation, lifecycle authorization, and the voting ledger.
package question

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"
)

// Domain outcomes.
var (
	ErrNotFound     = errors.New("question not found")
	ErrUnauthorized = errors.New("not the question creator")
	ErrValidation   = errors.New("question validation failed")
)

// Type discriminates the structural rules a question must satisfy.
type Type string

// Question types.
const (
	TypeTrueFalse   Type = "true_false"
	TypeMultiChoice Type = "multi_choice"
	TypeMultiAnswer Type = "multi_answer"
)

// Audience tags the intended respondent population.
type Audience string

// Audiences.
const (
	AudienceVtuber    Audience = "vtuber"
	AudienceFan       Audience = "fan"
	AudiencePassenger Audience = "passenger"
)

// VoteAction is a recognized vote kind.
type VoteAction string

// Vote actions.
const (
	VoteUp            VoteAction = "up_vote"
	VoteDown          VoteAction = "down_vote"
	VoteFlagOutdated  VoteAction = "flag_outdated"
	VoteFlagIncorrect VoteAction = "flag_incorrect"
)

// ParseVoteAction parses the string form of a vote action. An unrecognized
// string is a validation failure, not a crash or a generic error.
func ParseVoteAction(s string) (VoteAction, error) {
	switch a := VoteAction(s); a {
	case VoteUp, VoteDown, VoteFlagOutdated, VoteFlagIncorrect:
		return a, nil
	default:
		return "", oops.Code("VOTE_UNKNOWN_ACTION").
			With("action", s).
			Wrapf(ErrValidation, "unrecognized vote action %q", s)
	}
}

// Question is a quiz question. Answer holds distinct indices into Choices.
type Question struct {
	ID          int32      `json:"id"`
	Creator     int32      `json:"creator"`
	Description string     `json:"description"`
	Choices     []string   `json:"choices"`
	Answer      []int32    `json:"answer"`
	Type        Type       `json:"type"`
	Audiences   []Audience `json:"audiences"`
	Draft       bool       `json:"draft"`
	Deleted     bool       `json:"deleted"`
	Created     time.Time  `json:"created"`
	Updated     time.Time  `json:"updated"`
}

// Validate checks the per-type structural invariants:
//
//	true_false:   choices exactly ["T","F"], answer exactly one of 0|1
//	multi_choice: non-empty choices, answer exactly one in-range index
//	multi_answer: non-empty choices, one or more distinct in-range indices
func (q *Question) Validate() error {
	switch q.Type {
	case TypeTrueFalse:
		if len(q.Choices) != 2 || q.Choices[0] != "T" || q.Choices[1] != "F" {
			return oops.Code("QUESTION_INVALID_CHOICES").
				Wrapf(ErrValidation, `true_false choices must be exactly ["T","F"]`)
		}
		if len(q.Answer) != 1 || (q.Answer[0] != 0 && q.Answer[0] != 1) {
			return oops.Code("QUESTION_INVALID_ANSWER").
				Wrapf(ErrValidation, "true_false answer must be exactly one index, 0 or 1")
		}
	case TypeMultiChoice:
		if len(q.Choices) == 0 {
			return oops.Code("QUESTION_INVALID_CHOICES").
				Wrapf(ErrValidation, "choices cannot be empty")
		}
		if len(q.Answer) != 1 {
			return oops.Code("QUESTION_INVALID_ANSWER").
				Wrapf(ErrValidation, "multi_choice answer must be exactly one index")
		}
		if !inRange(q.Answer[0], len(q.Choices)) {
			return oops.Code("QUESTION_INVALID_ANSWER").
				With("index", q.Answer[0]).
				Wrapf(ErrValidation, "answer index out of range")
		}
	case TypeMultiAnswer:
		if len(q.Choices) == 0 {
			return oops.Code("QUESTION_INVALID_CHOICES").
				Wrapf(ErrValidation, "choices cannot be empty")
		}
		if len(q.Answer) == 0 {
			return oops.Code("QUESTION_INVALID_ANSWER").
				Wrapf(ErrValidation, "multi_answer requires at least one answer index")
		}
		if len(q.Answer) > len(q.Choices) {
			return oops.Code("QUESTION_INVALID_ANSWER").
				Wrapf(ErrValidation, "more answers than choices")
		}
		seen := make(map[int32]struct{}, len(q.Answer))
		for _, idx := range q.Answer {
			if !inRange(idx, len(q.Choices)) {
				return oops.Code("QUESTION_INVALID_ANSWER").
					With("index", idx).
					Wrapf(ErrValidation, "answer index out of range")
			}
			if _, dup := seen[idx]; dup {
				return oops.Code("QUESTION_INVALID_ANSWER").
					With("index", idx).
					Wrapf(ErrValidation, "duplicate answer index")
			}
			seen[idx] = struct{}{}
		}
	default:
		return oops.Code("QUESTION_INVALID_TYPE").
			With("type", string(q.Type)).
			Wrapf(ErrValidation, "unrecognized question type")
	}

	for _, a := range q.Audiences {
		switch a {
		case AudienceVtuber, AudienceFan, AudiencePassenger:
		default:
			return oops.Code("QUESTION_INVALID_AUDIENCE").
				With("audience", string(a)).
				Wrapf(ErrValidation, "unrecognized audience")
		}
	}

	return nil
}

func inRange(idx int32, n int) bool {
	return idx >= 0 && int(idx) < n
}

// Repository manages question persistence. Get returns the raw row
// including drafts and soft-deleted questions; visibility is the service's
// concern.
type Repository interface {
	Create(ctx context.Context, q *Question) (int32, error)
	Get(ctx context.Context, id int32) (*Question, error)
	// Update persists the caller-mutable fields only.
	Update(ctx context.Context, q *Question) error
	// Delete soft-deletes the question.
	Delete(ctx context.Context, id int32) error
}

// VoteRepository appends votes. No deduplication: the ledger stacks.
type VoteRepository interface {
	Create(ctx context.Context, voter, questionID int32, action VoteAction) error
}

// ApplicationRepository manages question-to-vtuber applications.
type ApplicationRepository interface {
	// Create inserts an application pair; an existing pair is a no-op.
	Create(ctx context.Context, questionID, vtuberID int32) error
	Delete(ctx context.Context, questionID, vtuberID int32) error
	List(ctx context.Context, questionID int32) ([]int32, error)
}
