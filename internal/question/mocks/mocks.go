// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package mocks provides testify mocks for the question package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/virtio/vtuber-quiz/internal/question"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// MockRepository mocks question.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository with expectations asserted on
// cleanup.
func NewMockRepository(t *testing.T) *MockRepository {
	m := &MockRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, q *question.Question) (int32, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockRepository) Get(ctx context.Context, id int32) (*question.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*question.Question), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, q *question.Question) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id int32) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockVoteRepository mocks question.VoteRepository.
type MockVoteRepository struct {
	mock.Mock
}

// NewMockVoteRepository creates a MockVoteRepository with expectations
// asserted on cleanup.
func NewMockVoteRepository(t *testing.T) *MockVoteRepository {
	m := &MockVoteRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockVoteRepository) Create(ctx context.Context, voter, questionID int32, action question.VoteAction) error {
	args := m.Called(ctx, voter, questionID, action)
	return args.Error(0)
}

// MockApplicationRepository mocks question.ApplicationRepository.
type MockApplicationRepository struct {
	mock.Mock
}

// NewMockApplicationRepository creates a MockApplicationRepository with
// expectations asserted on cleanup.
func NewMockApplicationRepository(t *testing.T) *MockApplicationRepository {
	m := &MockApplicationRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockApplicationRepository) Create(ctx context.Context, questionID, vtuberID int32) error {
	args := m.Called(ctx, questionID, vtuberID)
	return args.Error(0)
}

func (m *MockApplicationRepository) Delete(ctx context.Context, questionID, vtuberID int32) error {
	args := m.Called(ctx, questionID, vtuberID)
	return args.Error(0)
}

func (m *MockApplicationRepository) List(ctx context.Context, questionID int32) ([]int32, error) {
	args := m.Called(ctx, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]int32), args.Error(1)
}

// MockUserDirectory mocks question.UserDirectory.
type MockUserDirectory struct {
	mock.Mock
}

// NewMockUserDirectory creates a MockUserDirectory with expectations
// asserted on cleanup.
func NewMockUserDirectory(t *testing.T) *MockUserDirectory {
	m := &MockUserDirectory{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockUserDirectory) GetByID(ctx context.Context, id int32) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}
