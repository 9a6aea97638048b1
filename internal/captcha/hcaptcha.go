// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package captcha verifies hCaptcha challenge responses. The transport
// layer calls Verify before registration, login, and voting; this package
// only answers yes or no.
package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
)

// DefaultEndpoint is the hCaptcha siteverify API.
const DefaultEndpoint = "https://hcaptcha.com/siteverify"

// ErrRejected is returned when hCaptcha does not accept the response token.
var ErrRejected = errors.New("captcha rejected")

// Verifier checks challenge responses against the hCaptcha API.
type Verifier struct {
	httpClient *http.Client
	endpoint   string
	secret     string
	siteKey    string
	bypass     bool
}

// Option configures a Verifier.
type Option func(*Verifier)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(v *Verifier) { v.httpClient = c }
}

// WithEndpoint overrides the siteverify URL.
func WithEndpoint(endpoint string) Option {
	return func(v *Verifier) { v.endpoint = endpoint }
}

// WithBypass skips verification entirely. Development only.
func WithBypass(bypass bool) Option {
	return func(v *Verifier) { v.bypass = bypass }
}

// NewVerifier creates a Verifier for the given site credentials.
func NewVerifier(secret, siteKey string, opts ...Option) *Verifier {
	v := &Verifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		endpoint:   DefaultEndpoint,
		secret:     secret,
		siteKey:    siteKey,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify checks a challenge response token. remoteIP may be empty.
func (v *Verifier) Verify(ctx context.Context, response, remoteIP string) error {
	if v.bypass {
		return nil
	}
	if response == "" {
		return oops.Code("CAPTCHA_REJECTED").Wrapf(ErrRejected, "empty challenge response")
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("sitekey", v.siteKey)
	form.Set("response", response)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return oops.Code("CAPTCHA_TRANSPORT").Wrap(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return oops.Code("CAPTCHA_TRANSPORT").Wrap(err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return oops.Code("CAPTCHA_TRANSPORT").Wrap(err)
	}

	if !result.Success {
		return oops.Code("CAPTCHA_REJECTED").
			With("error_codes", result.ErrorCodes).
			Wrap(ErrRejected)
	}
	return nil
}
