package rma

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/brainmap/internal/logging"
	"github.com/ppiankov/brainmap/internal/model"
)

// Query describes one RMA request
type Query struct {
	Model    string   // e.g. "Structure", "SectionDataSet"
	Format   Format
	Includes []string // include= associations
	Criteria []string // criteria= filters, joined with ','
	Only     []string // only= attribute whitelist
	Suffix   string   // appended verbatim, e.g. "num_rows=all"
}

// URL assembles the request target below baseURL.
func (q Query) URL(baseURL string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(baseURL, "/"))
	b.WriteString("/data/")
	b.WriteString(q.Model)
	b.WriteString("/query.")
	b.WriteString(q.Format.String())
	b.WriteString("?")

	for _, p := range []struct {
		key  string
		vals []string
	}{
		{"include", q.Includes},
		{"criteria", q.Criteria},
		{"only", q.Only},
	} {
		if len(p.vals) == 0 {
			continue
		}
		b.WriteString(p.key)
		b.WriteString("=")
		b.WriteString(url.QueryEscape(strings.Join(p.vals, ",")))
		b.WriteString("&")
	}

	b.WriteString(q.Suffix)
	return b.String()
}

// Waiter blocks until a request to rawURL may proceed
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Client executes RMA queries. It holds no per-call state and is safe for
// concurrent use.
type Client struct {
	baseURL string
	fetcher *Fetcher
	limiter Waiter
	logger  *zap.SugaredLogger
}

// Option configures a Client
type Option func(*Client)

// WithLimiter rate limits outgoing requests.
func WithLimiter(w Waiter) Option {
	return func(c *Client) { c.limiter = w }
}

// WithLogger replaces the component logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg *model.Config, opts ...Option) *Client {
	c := &Client{
		baseURL: cfg.API.BaseURL,
		fetcher: NewFetcher(
			cfg.HTTP.Timeout,
			cfg.HTTP.UserAgent,
			cfg.HTTP.MaxBodyBytes,
			cfg.HTTP.HTTPProxy,
			cfg.HTTP.HTTPSProxy,
			cfg.HTTP.NoProxy,
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logging.Or(c.logger, "rma")
	return c
}

// Execute issues q and returns the decoded envelope.
//
// success=false yields ErrQueryRejected. A successful query with no rows is
// not an error: the envelope is returned and a warning is logged.
func (c *Client) Execute(ctx context.Context, q Query) (*Envelope, error) {
	target := q.URL(c.baseURL)
	log := c.logger.With(logging.FieldRequestID, uuid.NewString(), logging.FieldQuery, target)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, target); err != nil {
			return nil, errors.Mark(errors.Wrap(err, "rate limit"), ErrTransport)
		}
	}

	start := time.Now()
	log.Debugw("querying")
	res, err := c.fetcher.Fetch(ctx, target, q.Format)
	if err != nil {
		log.Debugw("query failed", logging.FieldError, err)
		return nil, errors.Wrapf(err, "query %s", target)
	}

	env, err := Decode(q.Format, bytes.NewReader(res.Body))
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", target)
	}

	log.Debugw("query complete",
		logging.FieldStatus, res.StatusCode,
		logging.FieldRows, env.TotalRows,
		logging.FieldDurationMS, time.Since(start).Milliseconds(),
	)

	if !env.Success {
		err := errors.Wrapf(ErrQueryRejected, "query %s is invalid", target)
		if env.Message != "" {
			err = errors.WithDetail(err, env.Message)
		}
		return nil, errors.WithHint(err, "check the query parameters and try again")
	}
	if env.TotalRows == 0 {
		log.Warnw("query returned no results")
	}

	return env, nil
}
