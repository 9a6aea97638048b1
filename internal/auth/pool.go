// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package auth

import (
	"context"
	"runtime"

	"github.com/samber/oops"
)

// Credentials is the context-aware hashing surface the services consume.
type Credentials interface {
	Hash(ctx context.Context, password string) (string, error)
	Verify(ctx context.Context, password, encoded string) (bool, error)
}

// PooledHasher bounds the number of concurrent argon2 computations. Hashing
// is deliberately expensive; without a bound a burst of logins would pin
// every scheduler thread and starve I/O-bound request handling. Waiting for
// a slot honors context cancellation.
type PooledHasher struct {
	inner PasswordHasher
	slots chan struct{}
}

// NewPooledHasher wraps inner with a gate of the given size.
// A non-positive size defaults to GOMAXPROCS.
func NewPooledHasher(inner PasswordHasher, size int) *PooledHasher {
	if size <= 0 {
		size = runtime.GOMAXPROCS(0)
	}
	return &PooledHasher{
		inner: inner,
		slots: make(chan struct{}, size),
	}
}

// Hash computes a password hash on an available slot.
func (p *PooledHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := p.acquire(ctx); err != nil {
		return "", err
	}
	defer p.release()
	return p.inner.Hash(password)
}

// Verify checks a password against an encoded hash on an available slot.
func (p *PooledHasher) Verify(ctx context.Context, password, encoded string) (bool, error) {
	if err := p.acquire(ctx); err != nil {
		return false, err
	}
	defer p.release()
	return p.inner.Verify(password, encoded), nil
}

func (p *PooledHasher) acquire(ctx context.Context) error {
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return oops.Code("AUTH_HASH_CANCELED").Wrap(ctx.Err())
	}
}

func (p *PooledHasher) release() {
	<-p.slots
}

var _ Credentials = (*PooledHasher)(nil)
