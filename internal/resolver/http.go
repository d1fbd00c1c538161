package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/memohai/pixeltools/internal/media"
)

// HTTPDoer is the subset of *http.Client used for remote fetches.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// FetchOptions bounds a single outbound request.
type FetchOptions struct {
	Timeout   time.Duration
	UserAgent string
}

// NewHTTPClient returns a client that gives up after maxRedirects hops.
func NewHTTPClient(timeout time.Duration, maxRedirects int) *http.Client {
	if maxRedirects <= 0 {
		maxRedirects = 5
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			return nil
		},
	}
}

// cancelOnClose releases the per-request timeout once the body is closed.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// get issues a GET and returns the response only for 2xx statuses. The
// caller must close the body.
func (o FetchOptions) get(ctx context.Context, client HTTPDoer, rawURL, accept string) (*http.Response, error) {
	if client == nil {
		client = http.DefaultClient
	}
	cancel := context.CancelFunc(func() {})
	if o.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, o.Timeout)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, media.Wrap(media.KindUpstream, err, "Invalid URL `%s`", rawURL)
	}
	if o.UserAgent != "" {
		req.Header.Set("User-Agent", o.UserAgent)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	resp, err := client.Do(req)
	if err != nil {
		cancel()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, media.Wrap(media.KindUpstream, err, "Request to `%s` timed out", rawURL)
		}
		return nil, media.Wrap(media.KindUpstream, err, "Could not fetch `%s`", rawURL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		cancel()
		return nil, media.Errorf(media.KindUpstream, "URL returned status code %d", resp.StatusCode)
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// declaredLength returns the advertised body length, or -1 when unknown.
func declaredLength(resp *http.Response) int64 {
	if resp.ContentLength >= 0 {
		return resp.ContentLength
	}
	raw := strings.TrimSpace(resp.Header.Get("Content-Length"))
	if raw == "" {
		return -1
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return -1
	}
	return n
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// trimURL strips whitespace and the angle brackets chat clients use to
// suppress previews.
func trimURL(raw string) string {
	return strings.TrimSuffix(strings.TrimPrefix(strings.TrimSpace(raw), "<"), ">")
}
