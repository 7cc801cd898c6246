package config

import (
	"io"
	"net/http"
	"strings"
)

// mockRoundTripper counts attempts so retry tests can assert on them.
type mockRoundTripper struct {
	calls   int
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.calls++
	return m.handler(req)
}

func statusResponse(code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
}
