// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/virtio/vtuber-quiz/internal/auth"
	"github.com/virtio/vtuber-quiz/internal/bilibili"
	"github.com/virtio/vtuber-quiz/internal/observability"
)

// dummyPasswordHash is verified when a username doesn't exist so that the
// login path costs the same either way. It is not a credential and matches
// no password.
//
//nolint:gosec // G101: intentionally fake hash for timing-attack prevention.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// DefaultChallengeTemplates are the stock messages users paste into a
// Bilibili post, with the challenge code substituted for the placeholder.
var DefaultChallengeTemplates = []string{
	"我正在使用vtuber粉丝力测试，点下方的链接看看我创建的题目吧\nhttps://quiz.virtio.com.cn/v/{}",
	"我正在使用vtuber粉丝力测试，点下方的链接测试一下你的粉丝力吧\nhttps://quiz.virtio.com.cn/v/{}",
}

// PostFetcher is the slice of the Bilibili client the binding flow needs.
type PostFetcher interface {
	GetPost(ctx context.Context, dynamicID uint64) (*bilibili.Post, error)
}

// Service provides account operations.
type Service struct {
	users     Repository
	follows   FollowRepository
	creds     auth.Credentials
	posts     PostFetcher
	codes     *CodeGenerator
	templates []string
	logger    *slog.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithChallengeTemplates overrides the challenge message templates.
func WithChallengeTemplates(templates []string) ServiceOption {
	return func(s *Service) {
		if len(templates) > 0 {
			s.templates = templates
		}
	}
}

// WithCodeGenerator overrides the challenge code generator.
func WithCodeGenerator(g *CodeGenerator) ServiceOption {
	return func(s *Service) { s.codes = g }
}

// WithLogger overrides the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = logger }
}

// NewService creates a user Service.
func NewService(users Repository, follows FollowRepository, creds auth.Credentials, posts PostFetcher, opts ...ServiceOption) (*Service, error) {
	if users == nil {
		return nil, oops.Errorf("user repository is required")
	}
	if follows == nil {
		return nil, oops.Errorf("follow repository is required")
	}
	if creds == nil {
		return nil, oops.Errorf("credentials are required")
	}
	s := &Service{
		users:     users,
		follows:   follows,
		creds:     creds,
		posts:     posts,
		codes:     NewCodeGenerator(),
		templates: DefaultChallengeTemplates,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register creates an account and returns it.
func (s *Service) Register(ctx context.Context, username, password string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := s.creds.Hash(ctx, password)
	if err != nil {
		if errors.Is(err, auth.ErrEmptyPassword) {
			return nil, oops.Code("USER_INVALID_PASSWORD").
				Wrapf(ErrValidation, "password cannot be empty")
		}
		return nil, oops.Code("USER_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	id, err := s.users.Create(ctx, username, hash)
	if err != nil {
		// ErrConflictUsername passes through untouched.
		return nil, err
	}
	observability.RecordRegistration()

	return s.users.GetByID(ctx, id)
}

// Login authenticates an account by username and password. A nonexistent
// username and a wrong password produce the identical ErrInvalidCredential:
// both paths run one hash verification and return the same outcome.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, lookupErr := s.users.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	exists := false
	switch {
	case lookupErr == nil:
		targetHash = u.PasswordHash
		exists = true
	case errors.Is(lookupErr, ErrNotFound):
		// Keep going with the dummy hash.
	default:
		return nil, oops.Code("USER_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(lookupErr)
	}

	valid, err := s.creds.Verify(ctx, password, targetHash)
	if err != nil {
		return nil, oops.Code("USER_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}

	if !exists || !valid {
		observability.RecordLogin("failure")
		return nil, oops.Code("USER_INVALID_CREDENTIALS").Wrap(ErrInvalidCredential)
	}

	observability.RecordLogin("success")
	return u, nil
}

// Get retrieves an account by id.
func (s *Service) Get(ctx context.Context, id int32) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// Follow records that follower follows followee. Re-following is a no-op.
func (s *Service) Follow(ctx context.Context, follower, followee int32, private bool) error {
	if follower == followee {
		return oops.Code("USER_SELF_FOLLOW").
			Wrapf(ErrValidation, "cannot follow yourself")
	}
	return s.follows.Create(ctx, follower, followee, private)
}

// Unfollow removes a follow pair. Unfollowing a pair that doesn't exist is
// a no-op.
func (s *Service) Unfollow(ctx context.Context, follower, followee int32) error {
	return s.follows.Delete(ctx, follower, followee)
}

// CreateChallenge issues a fresh challenge code for the account, replacing
// any pending one. On a code collision it draws again and retries; the loop
// is unbounded because correctness must not lean on the 62^7 odds, but each
// iteration is a single independent storage round trip with no lock held.
func (s *Service) CreateChallenge(ctx context.Context, id int32) (*Challenge, error) {
	var code string
	err := retry.Do(ctx, retry.NewConstant(time.Millisecond), func(ctx context.Context) error {
		code = s.codes.Code()
		err := s.users.SetChallenge(ctx, id, code)
		if errors.Is(err, ErrChallengeTaken) {
			observability.RecordChallengeCollision()
			s.logger.Debug("challenge code collision, retrying", "user_id", id)
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		// ErrNotFound passes through; anything else is already wrapped.
		return nil, err
	}

	return &Challenge{Code: code, Templates: s.templates}, nil
}

// VerifyChallenge completes the external-account binding: it fetches the
// Bilibili post, requires the pending challenge code to appear in the post
// content, and records the post author's uid on the account. Upstream
// failures pass through by kind so callers can decide whether to retry;
// nothing is written unless the check passes.
func (s *Service) VerifyChallenge(ctx context.Context, id int32, dynamicID uint64) (*bilibili.Post, error) {
	if s.posts == nil {
		return nil, oops.Code("USER_BINDING_UNAVAILABLE").Errorf("no post fetcher configured")
	}

	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Challenge == nil {
		return nil, oops.Code("USER_NO_CHALLENGE").
			Wrapf(ErrValidation, "no pending challenge code")
	}

	post, err := s.posts.GetPost(ctx, dynamicID)
	if err != nil {
		observability.RecordUpstreamFailure(upstreamKind(err))
		return nil, err
	}

	if !strings.Contains(post.Content, *u.Challenge) {
		return nil, oops.Code("USER_CHALLENGE_MISMATCH").
			With("dynamic_id", dynamicID).
			Wrapf(ErrValidation, "challenge code not present in post content")
	}

	if err := s.users.CompleteBinding(ctx, id, post.Sender.UID); err != nil {
		return nil, err
	}

	s.logger.Info("external account bound",
		"user_id", id,
		"bilibili_uid", post.Sender.UID)
	return post, nil
}

func upstreamKind(err error) string {
	switch {
	case errors.Is(err, bilibili.ErrTransport):
		return "transport"
	case errors.Is(err, bilibili.ErrUpstream):
		return "upstream"
	case errors.Is(err, bilibili.ErrMalformed):
		return "malformed"
	default:
		return "other"
	}
}
