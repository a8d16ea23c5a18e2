package scraper

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"
	"time"
)

type mockTransport struct {
	body       string
	statusCode int
	err        error
}

func (m *mockTransport) Do(_ *http.Request) (*http.Response, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &http.Response{
		StatusCode: m.statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(m.body)),
	}, nil
}

// seqTransport replays a sequence of responses, one per request.
type seqTransport struct {
	responses []mockTransport
	calls     int
}

func (s *seqTransport) Do(req *http.Request) (*http.Response, error) {
	i := s.calls
	if i >= len(s.responses) {
		i = len(s.responses) - 1
	}
	s.calls++
	return s.responses[i].Do(req)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fastClient removes the retry delay so failure paths stay quick in tests.
func fastClient(transport HTTPClient) *Client {
	c := NewClient(transport)
	c.retryDelay = time.Millisecond
	return c
}

func loadFixture(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test-only fixture loading
	if err != nil {
		t.Fatalf("read fixture %s: %v", path, err)
	}
	return string(data)
}

func TestClientGet(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
		want      string
		wantErr   bool
	}{
		{
			name:      "successful fetch",
			transport: &mockTransport{body: "<html></html>", statusCode: 200},
			want:      "<html></html>",
		},
		{
			name:      "not found is terminal",
			transport: &mockTransport{body: "missing", statusCode: 404},
			wantErr:   true,
		},
		{
			name:      "network error exhausts retries",
			transport: &mockTransport{err: io.ErrUnexpectedEOF},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fastClient(tt.transport)
			body, err := c.Get(context.Background(), "https://example.com")
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(body) != tt.want {
				t.Errorf("body mismatch: got %q", body)
			}
		})
	}
}

func TestClientGetRetriesServerErrors(t *testing.T) {
	transport := &seqTransport{responses: []mockTransport{
		{body: "flaky", statusCode: 503},
		{body: "recovered", statusCode: 200},
	}}

	c := fastClient(transport)
	body, err := c.Get(context.Background(), "https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "recovered" {
		t.Errorf("expected retried body, got %q", body)
	}
	if transport.calls != 2 {
		t.Errorf("expected 2 requests, got %d", transport.calls)
	}
}

func TestClientGetDoesNotRetryClientErrors(t *testing.T) {
	transport := &seqTransport{responses: []mockTransport{
		{body: "forbidden", statusCode: 403},
	}}

	c := fastClient(transport)
	if _, err := c.Get(context.Background(), "https://example.com"); err == nil {
		t.Fatal("expected error")
	}
	if transport.calls != 1 {
		t.Errorf("4xx must not be retried: got %d requests", transport.calls)
	}
}
