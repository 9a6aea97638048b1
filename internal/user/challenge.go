// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

package user

import (
	"math/rand/v2"
	"strings"
)

// Challenge code shape: 7 case-sensitive characters over A-Za-z0-9, about
// 3.5e12 combinations. Collisions are negligible but still handled (see
// Service.CreateChallenge).
const (
	ChallengeLength   = 7
	ChallengeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// Challenge is an issued verification code plus the caller-facing message
// templates users paste into their Bilibili post. Templates are
// informational only.
type Challenge struct {
	Code      string   `json:"code"`
	Templates []string `json:"templates"`
}

// CodeSource yields uniform integers in [0, n). A fast PRNG is fine here:
// codes guard nothing secret, the alphabet space does the work.
type CodeSource interface {
	IntN(n int) int
}

// CodeGenerator draws challenge codes from an injected source.
type CodeGenerator struct {
	src CodeSource
}

// NewCodeGenerator creates a generator backed by math/rand/v2.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{src: defaultSource{}}
}

// NewCodeGeneratorWithSource creates a generator with a custom source.
// Tests supply deterministic sequences.
func NewCodeGeneratorWithSource(src CodeSource) *CodeGenerator {
	return &CodeGenerator{src: src}
}

// Code draws a fresh challenge code.
func (g *CodeGenerator) Code() string {
	var b strings.Builder
	b.Grow(ChallengeLength)
	for range ChallengeLength {
		b.WriteByte(ChallengeAlphabet[g.src.IntN(len(ChallengeAlphabet))])
	}
	return b.String()
}

type defaultSource struct{}

func (defaultSource) IntN(n int) int { return rand.IntN(n) }
