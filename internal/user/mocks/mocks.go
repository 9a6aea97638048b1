// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package mocks provides testify mocks for the user package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/virtio/vtuber-quiz/internal/bilibili"
	"github.com/virtio/vtuber-quiz/internal/user"
)

// MockRepository mocks user.Repository.
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

func (m *MockRepository) Create(ctx context.Context, username, passwordHash string) (int32, error) {
	args := m.Called(ctx, username, passwordHash)
	return args.Get(0).(int32), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int32) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockRepository) SetChallenge(ctx context.Context, id int32, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockRepository) CompleteBinding(ctx context.Context, id int32, bilibiliUID int64) error {
	args := m.Called(ctx, id, bilibiliUID)
	return args.Error(0)
}

// MockFollowRepository mocks user.FollowRepository.
type MockFollowRepository struct {
	mock.Mock
}

// NewMockFollowRepository creates a MockFollowRepository with expectations
// asserted on cleanup.
func NewMockFollowRepository(t *testing.T) *MockFollowRepository {
	m := &MockFollowRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockFollowRepository) Create(ctx context.Context, follower, followee int32, private bool) error {
	args := m.Called(ctx, follower, followee, private)
	return args.Error(0)
}

func (m *MockFollowRepository) Delete(ctx context.Context, follower, followee int32) error {
	args := m.Called(ctx, follower, followee)
	return args.Error(0)
}

// MockCredentials mocks auth.Credentials.
type MockCredentials struct {
	mock.Mock
}

// NewMockCredentials creates a MockCredentials with expectations asserted on
// cleanup.
func NewMockCredentials(t *testing.T) *MockCredentials {
	m := &MockCredentials{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCredentials) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *MockCredentials) Verify(ctx context.Context, password, encoded string) (bool, error) {
	args := m.Called(ctx, password, encoded)
	return args.Bool(0), args.Error(1)
}

// MockPostFetcher mocks user.PostFetcher.
type MockPostFetcher struct {
	mock.Mock
}

// NewMockPostFetcher creates a MockPostFetcher with expectations asserted on
// cleanup.
func NewMockPostFetcher(t *testing.T) *MockPostFetcher {
	m := &MockPostFetcher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPostFetcher) GetPost(ctx context.Context, dynamicID uint64) (*bilibili.Post, error) {
	args := m.Called(ctx, dynamicID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bilibili.Post), args.Error(1)
}
