// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/virtio/vtuber-quiz/internal/auth"
	"github.com/virtio/vtuber-quiz/internal/bilibili"
	"github.com/virtio/vtuber-quiz/internal/user"
	"github.com/virtio/vtuber-quiz/internal/user/mocks"
)

type serviceFixture struct {
	users   *mocks.MockRepository
	follows *mocks.MockFollowRepository
	creds   *mocks.MockCredentials
	posts   *mocks.MockPostFetcher
	svc     *user.Service
}

func newServiceFixture(t *testing.T, opts ...user.ServiceOption) *serviceFixture {
	t.Helper()

	f := &serviceFixture{
		users:   mocks.NewMockRepository(t),
		follows: mocks.NewMockFollowRepository(t),
		creds:   mocks.NewMockCredentials(t),
		posts:   mocks.NewMockPostFetcher(t),
	}

	svc, err := user.NewService(f.users, f.follows, f.creds, f.posts, opts...)
	require.NoError(t, err)
	f.svc = svc
	return f
}

func TestNewService(t *testing.T) {
	t.Run("requires a user repository", func(t *testing.T) {
		_, err := user.NewService(nil, mocks.NewMockFollowRepository(t), mocks.NewMockCredentials(t), nil)
		assert.Error(t, err)
	})

	t.Run("requires credentials", func(t *testing.T) {
		_, err := user.NewService(mocks.NewMockRepository(t), mocks.NewMockFollowRepository(t), nil, nil)
		assert.Error(t, err)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account", func(t *testing.T) {
		f := newServiceFixture(t)
		created := &user.User{ID: 7, Username: "alice", Role: user.RoleNormal}

		f.creds.On("Hash", mock.Anything, "hunter22").Return("$argon2id$encoded", nil)
		f.users.On("Create", mock.Anything, "alice", "$argon2id$encoded").Return(int32(7), nil)
		f.users.On("GetByID", mock.Anything, int32(7)).Return(created, nil)

		u, err := f.svc.Register(ctx, "alice", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, created, u)
	})

	t.Run("rejects an invalid username without hashing", func(t *testing.T) {
		f := newServiceFixture(t)

		_, err := f.svc.Register(ctx, "1alice", "hunter22")
		assert.ErrorIs(t, err, user.ErrValidation)
	})

	t.Run("rejects an empty password", func(t *testing.T) {
		f := newServiceFixture(t)
		f.creds.On("Hash", mock.Anything, "").Return("", auth.ErrEmptyPassword)

		_, err := f.svc.Register(ctx, "alice", "")
		assert.ErrorIs(t, err, user.ErrValidation)
	})

	t.Run("surfaces a username conflict", func(t *testing.T) {
		f := newServiceFixture(t)
		f.creds.On("Hash", mock.Anything, "hunter22").Return("$argon2id$encoded", nil)
		f.users.On("Create", mock.Anything, "alice", "$argon2id$encoded").
			Return(int32(0), user.ErrConflictUsername)

		_, err := f.svc.Register(ctx, "alice", "hunter22")
		assert.ErrorIs(t, err, user.ErrConflictUsername)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return the account", func(t *testing.T) {
		f := newServiceFixture(t)
		stored := &user.User{ID: 3, Username: "alice", PasswordHash: "$argon2id$encoded"}

		f.users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		f.creds.On("Verify", mock.Anything, "hunter22", "$argon2id$encoded").Return(true, nil)

		u, err := f.svc.Login(ctx, "alice", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, stored, u)
	})

	t.Run("wrong password fails with invalid credential", func(t *testing.T) {
		f := newServiceFixture(t)
		stored := &user.User{ID: 3, Username: "alice", PasswordHash: "$argon2id$encoded"}

		f.users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		f.creds.On("Verify", mock.Anything, "wrong", "$argon2id$encoded").Return(false, nil)

		_, err := f.svc.Login(ctx, "alice", "wrong")
		assert.ErrorIs(t, err, user.ErrInvalidCredential)
	})

	t.Run("unknown username still verifies one hash", func(t *testing.T) {
		f := newServiceFixture(t)

		f.users.On("GetByUsername", mock.Anything, "nobody").Return(nil, user.ErrNotFound)
		f.creds.On("Verify", mock.Anything, "hunter22", mock.AnythingOfType("string")).
			Return(false, nil).Once()

		_, err := f.svc.Login(ctx, "nobody", "hunter22")
		assert.ErrorIs(t, err, user.ErrInvalidCredential)
	})

	t.Run("unknown username and wrong password are indistinguishable", func(t *testing.T) {
		f := newServiceFixture(t)
		stored := &user.User{ID: 3, Username: "alice", PasswordHash: "$argon2id$encoded"}

		f.users.On("GetByUsername", mock.Anything, "alice").Return(stored, nil)
		f.users.On("GetByUsername", mock.Anything, "nobody").Return(nil, user.ErrNotFound)
		f.creds.On("Verify", mock.Anything, "wrong", mock.AnythingOfType("string")).Return(false, nil)

		_, errKnown := f.svc.Login(ctx, "alice", "wrong")
		_, errUnknown := f.svc.Login(ctx, "nobody", "wrong")

		require.Error(t, errKnown)
		require.Error(t, errUnknown)
		assert.Equal(t, errKnown.Error(), errUnknown.Error())
	})

	t.Run("forged dummy verification never logs in", func(t *testing.T) {
		// The dummy hash verified for unknown usernames matches no password,
		// so even a "true" from the verifier must not log anyone in.
		f := newServiceFixture(t)

		f.users.On("GetByUsername", mock.Anything, "nobody").Return(nil, user.ErrNotFound)
		f.creds.On("Verify", mock.Anything, "hunter22", mock.AnythingOfType("string")).Return(true, nil)

		_, err := f.svc.Login(ctx, "nobody", "hunter22")
		assert.ErrorIs(t, err, user.ErrInvalidCredential)
	})
}

func TestFollow(t *testing.T) {
	ctx := context.Background()

	t.Run("records a follow", func(t *testing.T) {
		f := newServiceFixture(t)
		f.follows.On("Create", mock.Anything, int32(1), int32(2), false).Return(nil)

		assert.NoError(t, f.svc.Follow(ctx, 1, 2, false))
	})

	t.Run("rejects a self follow", func(t *testing.T) {
		f := newServiceFixture(t)

		err := f.svc.Follow(ctx, 5, 5, false)
		assert.ErrorIs(t, err, user.ErrValidation)
	})

	t.Run("unfollow delegates", func(t *testing.T) {
		f := newServiceFixture(t)
		f.follows.On("Delete", mock.Anything, int32(1), int32(2)).Return(nil)

		assert.NoError(t, f.svc.Unfollow(ctx, 1, 2))
	})
}

func TestCreateChallenge(t *testing.T) {
	ctx := context.Background()

	t.Run("issues a code with the message templates", func(t *testing.T) {
		f := newServiceFixture(t,
			user.WithCodeGenerator(user.NewCodeGeneratorWithSource(&seqSource{values: []int{0}})))

		f.users.On("SetChallenge", mock.Anything, int32(9), "AAAAAAA").Return(nil)

		ch, err := f.svc.CreateChallenge(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, "AAAAAAA", ch.Code)
		assert.Equal(t, user.DefaultChallengeTemplates, ch.Templates)
	})

	t.Run("redraws on a code collision", func(t *testing.T) {
		// First draw AAAAAAA collides; second draw BBBBBBB lands.
		src := &seqSource{values: []int{
			0, 0, 0, 0, 0, 0, 0,
			1, 1, 1, 1, 1, 1, 1,
		}}
		f := newServiceFixture(t,
			user.WithCodeGenerator(user.NewCodeGeneratorWithSource(src)))

		f.users.On("SetChallenge", mock.Anything, int32(9), "AAAAAAA").
			Return(user.ErrChallengeTaken).Once()
		f.users.On("SetChallenge", mock.Anything, int32(9), "BBBBBBB").
			Return(nil).Once()

		ch, err := f.svc.CreateChallenge(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, "BBBBBBB", ch.Code)
	})

	t.Run("unknown account passes through", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.On("SetChallenge", mock.Anything, int32(404), mock.AnythingOfType("string")).
			Return(user.ErrNotFound)

		_, err := f.svc.CreateChallenge(ctx, 404)
		assert.ErrorIs(t, err, user.ErrNotFound)
	})

	t.Run("custom templates override the defaults", func(t *testing.T) {
		templates := []string{"code: {}"}
		f := newServiceFixture(t, user.WithChallengeTemplates(templates))
		f.users.On("SetChallenge", mock.Anything, int32(9), mock.AnythingOfType("string")).Return(nil)

		ch, err := f.svc.CreateChallenge(ctx, 9)
		require.NoError(t, err)
		assert.Equal(t, templates, ch.Templates)
	})
}

func TestVerifyChallenge(t *testing.T) {
	ctx := context.Background()
	code := "xK9mP2q"

	account := func() *user.User {
		c := code
		return &user.User{ID: 9, Username: "alice", Challenge: &c}
	}

	t.Run("binds the external account on a matching post", func(t *testing.T) {
		f := newServiceFixture(t)
		post := &bilibili.Post{
			ID:      112233,
			Sender:  bilibili.Account{UID: 776677, Name: "alice_bili"},
			Content: "我正在使用vtuber粉丝力测试 https://quiz.virtio.com.cn/v/" + code,
		}

		f.users.On("GetByID", mock.Anything, int32(9)).Return(account(), nil)
		f.posts.On("GetPost", mock.Anything, uint64(112233)).Return(post, nil)
		f.users.On("CompleteBinding", mock.Anything, int32(9), int64(776677)).Return(nil)

		got, err := f.svc.VerifyChallenge(ctx, 9, 112233)
		require.NoError(t, err)
		assert.Equal(t, post, got)
	})

	t.Run("no pending challenge is a validation failure", func(t *testing.T) {
		f := newServiceFixture(t)
		f.users.On("GetByID", mock.Anything, int32(9)).
			Return(&user.User{ID: 9, Username: "alice"}, nil)

		_, err := f.svc.VerifyChallenge(ctx, 9, 112233)
		assert.ErrorIs(t, err, user.ErrValidation)
	})

	t.Run("code absent from the post writes nothing", func(t *testing.T) {
		f := newServiceFixture(t)
		post := &bilibili.Post{
			ID:      112233,
			Sender:  bilibili.Account{UID: 776677},
			Content: "an unrelated post",
		}

		f.users.On("GetByID", mock.Anything, int32(9)).Return(account(), nil)
		f.posts.On("GetPost", mock.Anything, uint64(112233)).Return(post, nil)
		// No CompleteBinding expectation: a call would fail the test.

		_, err := f.svc.VerifyChallenge(ctx, 9, 112233)
		assert.ErrorIs(t, err, user.ErrValidation)
	})

	t.Run("upstream failures pass through by kind", func(t *testing.T) {
		f := newServiceFixture(t)

		f.users.On("GetByID", mock.Anything, int32(9)).Return(account(), nil)
		f.posts.On("GetPost", mock.Anything, uint64(112233)).
			Return(nil, &bilibili.UpstreamError{Code: -404, Message: "dynamic not found"})

		_, err := f.svc.VerifyChallenge(ctx, 9, 112233)
		assert.ErrorIs(t, err, bilibili.ErrUpstream)
	})
}
