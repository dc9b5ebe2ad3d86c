package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func okHandler(c echo.Context) error {
	return c.NoContent(http.StatusOK)
}

func serve(mw echo.MiddlewareFunc, req *http.Request) (*httptest.ResponseRecorder, echo.Context) {
	e := echo.New()
	rw := httptest.NewRecorder()
	c := e.NewContext(req, rw)
	if err := mw(okHandler)(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rw, c
}

func TestRequestID_Generated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw, c := serve(RequestID(), req)

	rid := rw.Header().Get(RequestIDHeader)
	if rid == "" {
		t.Fatal("no request id generated")
	}
	if got, _ := c.Get("request_id").(string); got != rid {
		t.Errorf("context request_id = %q, header = %q", got, rid)
	}
}

func TestRequestID_Propagated(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rw, _ := serve(RequestID(), req)

	if got := rw.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}

func TestRateLimit_ExhaustsBurst(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	e := echo.New()

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rw := httptest.NewRecorder()
		c := e.NewContext(req, rw)
		if err := mw(okHandler)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		statuses = append(statuses, rw.Code)
		if rw.Code == http.StatusTooManyRequests && rw.Header().Get("Retry-After") == "" {
			t.Error("429 without Retry-After header")
		}
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Errorf("first two requests = %v, want 200s", statuses[:2])
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Errorf("third request = %d, want 429", statuses[2])
	}
}

func TestRateLimit_SeparateClients(t *testing.T) {
	mw := RateLimit(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	e := echo.New()

	for _, addr := range []string{"10.0.0.1:1", "10.0.0.2:1"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rw := httptest.NewRecorder()
		c := e.NewContext(req, rw)
		if err := mw(okHandler)(c); err != nil {
			e.HTTPErrorHandler(err, c)
		}
		if rw.Code != http.StatusOK {
			t.Errorf("client %s got %d, want 200", addr, rw.Code)
		}
	}
}

func TestRequestTimeout_SetsDeadline(t *testing.T) {
	mw := RequestTimeout(5 * time.Second)
	var hasDeadline bool
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := mw(func(c echo.Context) error {
		_, hasDeadline = c.Request().Context().Deadline()
		return c.NoContent(http.StatusOK)
	})(c)
	if err != nil {
		t.Fatalf("handler err: %v", err)
	}
	if !hasDeadline {
		t.Error("request context has no deadline")
	}
}

func TestRequestTimeout_Expired(t *testing.T) {
	mw := RequestTimeout(time.Millisecond)
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()
	c := e.NewContext(req, rw)

	err := mw(func(c echo.Context) error {
		<-c.Request().Context().Done()
		return c.Request().Context().Err()
	})(c)
	if err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rw.Code != http.StatusGatewayTimeout {
		t.Errorf("status = %d, want 504", rw.Code)
	}
}

func TestBodyLimit_ContentLengthRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(strings.Repeat("x", 2048)))
	rw, _ := serve(BodyLimit("1K"), req)

	if rw.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rw.Code)
	}
}

func TestBodyLimit_UnderLimitPasses(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))
	rw, _ := serve(BodyLimit("1K"), req)

	if rw.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rw.Code)
	}
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"512", 512},
		{"1K", 1 << 10},
		{"10M", 10 << 20},
		{"2G", 2 << 30},
		{"10m", 10 << 20},
		{"", 1 << 20},
		{"bogus", 1 << 20},
	}
	for _, tt := range tests {
		if got := parseLimit(tt.in); got != tt.want {
			t.Errorf("parseLimit(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
