// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 VTuber Quiz Contributors

// Package bilibili fetches public account and post data from the Bilibili
// API so the user service can prove ownership of an external account. The
// client reports identity and content; it never decides whether a binding
// is authorized.
package bilibili

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/samber/oops"
)

// Default API hosts. Overridable for tests and mirrors.
const (
	DefaultAPIBase = "https://api.bilibili.com"
	DefaultVCBase  = "https://api.vc.bilibili.com"
)

// Failure kinds. Callers route on these: transport failures are retryable,
// upstream and malformed failures are not.
var (
	ErrTransport = errors.New("bilibili: transport failure")
	ErrUpstream  = errors.New("bilibili: upstream error")
	ErrMalformed = errors.New("bilibili: malformed response")
)

// UpstreamError carries the non-zero code and message from a response
// envelope. errors.Is(err, ErrUpstream) matches it.
type UpstreamError struct {
	Code    int32
	Message string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("bilibili error(%d): %s", e.Code, e.Message)
}

// Is makes UpstreamError match the ErrUpstream sentinel.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

// Account is the public profile of a Bilibili user.
type Account struct {
	UID     int64  `json:"uid"`
	Name    string `json:"name"`
	Sex     string `json:"sex"`
	Face    string `json:"face"`
	Level   uint8  `json:"level"`
	Silence bool   `json:"silence"`
}

// Post is a dynamic post together with its sender's profile.
type Post struct {
	ID      uint64  `json:"rid"`
	Sender  Account `json:"sender"`
	Content string  `json:"content"`
}

// Client calls the Bilibili public API.
type Client struct {
	httpClient *http.Client
	apiBase    string
	vcBase     string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.httpClient = c }
}

// WithBaseURLs overrides the API hosts.
func WithBaseURLs(apiBase, vcBase string) Option {
	return func(cl *Client) {
		cl.apiBase = apiBase
		cl.vcBase = vcBase
	}
}

// NewClient creates a Client with a 10s default timeout. Caller contexts
// with shorter deadlines win.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		apiBase:    DefaultAPIBase,
		vcBase:     DefaultVCBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope is the top-level status/message/data wrapper every Bilibili
// endpoint shares. data stays raw until the envelope code is known good.
type envelope struct {
	Code    int32           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// accountPayload is the wire form of a profile; silence arrives as 0/1.
type accountPayload struct {
	MID     int64  `json:"mid"`
	Name    string `json:"name"`
	Sex     string `json:"sex"`
	Face    string `json:"face"`
	Level   uint8  `json:"level"`
	Silence int    `json:"silence"`
}

// GetAccount fetches the public profile for a Bilibili user id.
func (c *Client) GetAccount(ctx context.Context, uid int64) (*Account, error) {
	url := fmt.Sprintf("%s/x/space/acc/info?mid=%d&jsonp=jsonp", c.apiBase, uid)

	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var payload accountPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "account").
			With("uid", uid).
			Wrapf(ErrMalformed, "decode account payload: %v", err)
	}

	return &Account{
		UID:     payload.MID,
		Name:    payload.Name,
		Sex:     payload.Sex,
		Face:    payload.Face,
		Level:   payload.Level,
		Silence: payload.Silence != 0,
	}, nil
}

// GetPost fetches a dynamic post by id and resolves its sender's profile.
//
// The post-detail endpoint nests the interesting object twice: data.card is
// an object whose "card" field is itself a JSON-encoded string that must be
// parsed again to reach {user: {uid}, item: {rp_id, content}}. The two
// decode stages fail with distinct context so a broken outer envelope can
// be told apart from a broken inner card.
func (c *Client) GetPost(ctx context.Context, dynamicID uint64) (*Post, error) {
	url := fmt.Sprintf("%s/dynamic_svr/v1/dynamic_svr/get_dynamic_detail?dynamic_id=%d", c.vcBase, dynamicID)

	data, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	// First stage: the outer card object with the string-encoded card.
	var outer struct {
		Card struct {
			Card string `json:"card"`
		} `json:"card"`
	}
	if err := json.Unmarshal(data, &outer); err != nil {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "outer card").
			With("dynamic_id", dynamicID).
			Wrapf(ErrMalformed, "decode post data: %v", err)
	}
	if outer.Card.Card == "" {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "outer card").
			With("dynamic_id", dynamicID).
			Wrapf(ErrMalformed, "missing card field")
	}

	// Second stage: the card payload proper.
	var card struct {
		User struct {
			UID int64 `json:"uid"`
		} `json:"user"`
		Item struct {
			RpID    uint64 `json:"rp_id"`
			Content string `json:"content"`
		} `json:"item"`
	}
	if err := json.Unmarshal([]byte(outer.Card.Card), &card); err != nil {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "inner card").
			With("dynamic_id", dynamicID).
			Wrapf(ErrMalformed, "decode inner card: %v", err)
	}
	if card.User.UID == 0 || card.Item.RpID == 0 || card.Item.Content == "" {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "inner card").
			With("dynamic_id", dynamicID).
			Wrapf(ErrMalformed, "missing user or item fields")
	}

	sender, err := c.GetAccount(ctx, card.User.UID)
	if err != nil {
		return nil, err
	}

	return &Post{
		ID:      card.Item.RpID,
		Sender:  *sender,
		Content: card.Item.Content,
	}, nil
}

// get performs a GET and unwraps the response envelope, returning the raw
// data payload.
func (c *Client) get(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, oops.Code("BILIBILI_TRANSPORT").Wrapf(ErrTransport, "build request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, oops.Code("BILIBILI_TRANSPORT").Wrapf(ErrTransport, "%v", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "envelope").
			Wrapf(ErrMalformed, "decode envelope: %v", err)
	}

	if env.Code != 0 {
		return nil, oops.Code("BILIBILI_UPSTREAM").
			With("upstream_code", env.Code).
			Wrap(&UpstreamError{Code: env.Code, Message: env.Message})
	}
	if env.Data == nil {
		return nil, oops.Code("BILIBILI_MALFORMED").
			With("stage", "envelope").
			Wrapf(ErrMalformed, "success envelope without data")
	}

	return env.Data, nil
}
