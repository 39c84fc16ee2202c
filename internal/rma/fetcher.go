package rma

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ppiankov/brainmap/internal/util"
)

// Fetcher performs the single GET behind every query
type Fetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// DefaultMaxBodyBytes caps a response body when no limit is configured.
const DefaultMaxBodyBytes = 32 << 20

// NewFetcher creates a new Fetcher with the given configuration
func NewFetcher(timeout time.Duration, userAgent string, maxBytes int64, httpProxy, httpsProxy, noProxy string) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(httpProxy, httpsProxy, noProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return errors.New("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// FetchResult contains the response body and metadata
type FetchResult struct {
	Body        []byte
	StatusCode  int
	ContentType string
}

// Fetch retrieves rawURL. Network failures and non-2xx statuses are
// returned marked with ErrTransport.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string, format Format) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "create request"), ErrTransport)
	}

	req.Header.Set("User-Agent", f.userAgent)
	if format == FormatJSON {
		req.Header.Set("Accept", "application/json")
	} else {
		req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "fetch"), ErrTransport)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Mark(
			errors.Newf("unexpected status: %s", resp.Status),
			ErrTransport,
		)
	}

	// Read one byte past the limit to detect truncation
	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "read body"), ErrTransport)
	}
	if int64(len(body)) > f.maxBytes {
		return nil, errors.Mark(
			errors.Newf("response exceeds %d bytes", f.maxBytes),
			ErrTransport,
		)
	}

	return &FetchResult{
		Body:        body,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}, nil
}
