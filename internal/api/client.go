// Package api is the REST client for the shop backend. It owns
// per-call deadlines, bounded retry for idempotent reads and the
// mapping of wire failures into the apierr taxonomy.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/umerali06/fixora-pro-sync/internal/apierr"
	"github.com/umerali06/fixora-pro-sync/internal/common"
)

// TokenSource supplies the bearer credential. Token lifecycle
// (refresh, storage) belongs to the auth collaborator, not the client.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed credential. The empty string sends no
// Authorization header.
type StaticToken string

func (s StaticToken) Token(ctx context.Context) (string, error) { return string(s), nil }

const (
	defaultTimeout     = 25 * time.Second
	defaultReadRetries = 2
)

type Client struct {
	baseURL     string
	tokens      TokenSource
	httpClient  *http.Client
	timeout     time.Duration
	readRetries int
	logger      *zap.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option { return func(c *Client) { c.timeout = d } }

// WithReadRetries bounds extra attempts for GETs. Mutating calls are
// never retried regardless of this setting.
func WithReadRetries(n int) Option { return func(c *Client) { c.readRetries = n } }

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

func WithLogger(l *zap.Logger) Option { return func(c *Client) { c.logger = l } }

func NewClient(baseURL string, tokens TokenSource, opts ...Option) *Client {
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		baseURL:     baseURL,
		tokens:      tokens,
		httpClient:  &http.Client{},
		timeout:     defaultTimeout,
		readRetries: defaultReadRetries,
		logger:      common.L(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// wireError mirrors the backend's ErrorResponse schema.
type wireError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// do performs one logical call. GETs get up to readRetries extra
// attempts with exponential backoff; everything else runs exactly once
// so a side effect can never be duplicated by a blind retry.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return apierr.Wrap(apierr.KindInternal, "encode request body", err)
		}
		payload = b
	}

	if method != http.MethodGet || c.readRetries <= 0 {
		return c.once(ctx, method, path, query, payload, out)
	}

	attempt := 0
	op := func() error {
		attempt++
		err := c.once(ctx, method, path, query, payload, out)
		if err == nil {
			return nil
		}
		switch apierr.KindOf(err) {
		case apierr.KindTimeout, apierr.KindTransport, apierr.KindInternal:
			c.logger.Warn("retrying read",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		default:
			return backoff.Permanent(err)
		}
	}
	bo := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(c.readRetries)),
		ctx,
	)
	return backoff.Retry(op, bo)
}

// once performs a single HTTP attempt under the per-call deadline.
func (c *Client) once(ctx context.Context, method, path string, query url.Values, payload []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return apierr.Wrap(apierr.KindInternal, "build request", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return apierr.Wrap(apierr.KindAuth, "obtain credential", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return apierr.Timeout(fmt.Sprintf("%s %s deadline exceeded", method, path), err)
		}
		return apierr.Wrap(apierr.KindTransport, fmt.Sprintf("%s %s", method, path), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			io.Copy(io.Discard, resp.Body)
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return apierr.Wrap(apierr.KindInternal, "decode response", err)
		}
		return nil
	}

	var we wireError
	b, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(b, &we)
	msg := we.Message
	if msg == "" {
		msg = fmt.Sprintf("%s %s failed with status %d", method, path, resp.StatusCode)
	}
	return &apierr.Error{Kind: apierr.KindFromStatus(resp.StatusCode), Code: we.Code, Message: msg}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
