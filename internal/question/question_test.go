// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package question_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtio/vtuber-quiz/internal/question"
)

func TestQuestionValidate(t *testing.T) {
	tests := []struct {
		name    string
		q       question.Question
		wantErr bool
	}{
		{
			name: "true_false valid",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"T", "F"},
				Answer:  []int32{0},
			},
		},
		{
			name: "true_false answer F",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"T", "F"},
				Answer:  []int32{1},
			},
		},
		{
			name: "true_false rejects other choice labels",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"Yes", "No"},
				Answer:  []int32{0},
			},
			wantErr: true,
		},
		{
			name: "true_false rejects swapped labels",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"F", "T"},
				Answer:  []int32{0},
			},
			wantErr: true,
		},
		{
			name: "true_false rejects two answers",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"T", "F"},
				Answer:  []int32{0, 1},
			},
			wantErr: true,
		},
		{
			name: "true_false rejects out-of-range answer",
			q: question.Question{
				Type:    question.TypeTrueFalse,
				Choices: []string{"T", "F"},
				Answer:  []int32{2},
			},
			wantErr: true,
		},
		{
			name: "multi_choice valid",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: []string{"a", "b", "c"},
				Answer:  []int32{2},
			},
		},
		{
			name: "multi_choice rejects empty choices",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: nil,
				Answer:  []int32{0},
			},
			wantErr: true,
		},
		{
			name: "multi_choice rejects out-of-range index",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: []string{"a", "b", "c"},
				Answer:  []int32{3},
			},
			wantErr: true,
		},
		{
			name: "multi_choice rejects negative index",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: []string{"a", "b", "c"},
				Answer:  []int32{-1},
			},
			wantErr: true,
		},
		{
			name: "multi_choice rejects zero answers",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: []string{"a", "b", "c"},
				Answer:  nil,
			},
			wantErr: true,
		},
		{
			name: "multi_choice rejects multiple answers",
			q: question.Question{
				Type:    question.TypeMultiChoice,
				Choices: []string{"a", "b", "c"},
				Answer:  []int32{0, 1},
			},
			wantErr: true,
		},
		{
			name: "multi_answer valid with several answers",
			q: question.Question{
				Type:    question.TypeMultiAnswer,
				Choices: []string{"a", "b", "c"},
				Answer:  []int32{0, 2},
			},
		},
		{
			name: "multi_answer valid with a single answer",
			q: question.Question{
				Type:    question.TypeMultiAnswer,
				Choices: []string{"a", "b"},
				Answer:  []int32{1},
			},
		},
		{
			name: "multi_answer rejects zero answers",
			q: question.Question{
				Type:    question.TypeMultiAnswer,
				Choices: []string{"a", "b"},
				Answer:  nil,
			},
			wantErr: true,
		},
		{
			name: "multi_answer rejects duplicate indices",
			q: question.Question{
				Type:    question.TypeMultiAnswer,
				Choices: []string{"a", "b"},
				Answer:  []int32{0, 1, 1},
			},
			wantErr: true,
		},
		{
			name: "multi_answer rejects out-of-range index",
			q: question.Question{
				Type:    question.TypeMultiAnswer,
				Choices: []string{"a", "b"},
				Answer:  []int32{0, 2},
			},
			wantErr: true,
		},
		{
			name: "unknown type rejected",
			q: question.Question{
				Type:    question.Type("essay"),
				Choices: []string{"a"},
				Answer:  []int32{0},
			},
			wantErr: true,
		},
		{
			name: "valid audiences accepted",
			q: question.Question{
				Type:      question.TypeTrueFalse,
				Choices:   []string{"T", "F"},
				Answer:    []int32{0},
				Audiences: []question.Audience{question.AudienceVtuber, question.AudienceFan, question.AudiencePassenger},
			},
		},
		{
			name: "unknown audience rejected",
			q: question.Question{
				Type:      question.TypeTrueFalse,
				Choices:   []string{"T", "F"},
				Answer:    []int32{0},
				Audiences: []question.Audience{question.Audience("staff")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, question.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseVoteAction(t *testing.T) {
	t.Run("recognized actions parse", func(t *testing.T) {
		for _, s := range []string{"up_vote", "down_vote", "flag_outdated", "flag_incorrect"} {
			act, err := question.ParseVoteAction(s)
			require.NoError(t, err, "action %q", s)
			assert.Equal(t, question.VoteAction(s), act)
		}
	})

	t.Run("unrecognized action is a validation failure", func(t *testing.T) {
		for _, s := range []string{"", "upvote", "UP_VOTE", "like"} {
			_, err := question.ParseVoteAction(s)
			require.Error(t, err, "action %q", s)
			assert.ErrorIs(t, err, question.ErrValidation)
		}
	})
}
