package resolver

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"sync"

	"github.com/memohai/pixeltools/internal/logger"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type route func(req *http.Request) (*http.Response, error)

// stubTransport answers requests from a fixed route table and records every
// URL it was asked for. Unknown URLs get a 404.
type stubTransport struct {
	mu       sync.Mutex
	routes   map[string]route
	requests []string
}

func newStubClient(routes map[string]route) (*http.Client, *stubTransport) {
	tr := &stubTransport{routes: routes}
	return &http.Client{Transport: tr}, tr
}

func (s *stubTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := req.Context().Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.requests = append(s.requests, req.URL.String())
	h, ok := s.routes[req.URL.String()]
	s.mu.Unlock()
	if !ok {
		return respond(req, http.StatusNotFound, "text/plain", []byte("not found")), nil
	}
	return h(req)
}

func (s *stubTransport) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func respond(req *http.Request, status int, contentType string, body []byte) *http.Response {
	header := http.Header{}
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	header.Set("Content-Length", strconv.Itoa(len(body)))
	return &http.Response{
		StatusCode:    status,
		Status:        http.StatusText(status),
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

func serve(status int, contentType string, body []byte) route {
	return func(req *http.Request) (*http.Response, error) {
		return respond(req, status, contentType, body), nil
	}
}

// trackingBody reports whether anything tried to read it.
type trackingBody struct {
	mu   sync.Mutex
	read bool
	r    io.Reader
}

func (b *trackingBody) Read(p []byte) (int, error) {
	b.mu.Lock()
	b.read = true
	b.mu.Unlock()
	return b.r.Read(p)
}

func (b *trackingBody) Close() error { return nil }

func (b *trackingBody) WasRead() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.read
}

func testFetch() FetchOptions {
	return FetchOptions{Timeout: 0, UserAgent: "pixeltools-test"}
}

func newTestSanitizer(client HTTPDoer) *Sanitizer {
	log := logger.Discard()
	unfurler := NewUnfurler(log, client, testFetch(), 1<<20, Tenor(), Giphy())
	return NewSanitizer(log, client, testFetch(), unfurler)
}
