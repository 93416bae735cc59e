package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func TestAllow_UpToMaxThenDeny(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewWithClock(clock.Now)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("login-1.2.3.4", 3, time.Minute), "call %d", i+1)
	}
	assert.False(t, l.Allow("login-1.2.3.4", 3, time.Minute))
	assert.False(t, l.Allow("login-1.2.3.4", 3, time.Minute))
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	l := New()

	assert.True(t, l.Allow("a", 1, time.Minute))
	assert.False(t, l.Allow("a", 1, time.Minute))
	assert.True(t, l.Allow("b", 1, time.Minute))
}

func TestAllow_WindowResets(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	l := NewWithClock(clock.Now)

	require.True(t, l.Allow("k", 2, time.Minute))
	require.True(t, l.Allow("k", 2, time.Minute))
	require.False(t, l.Allow("k", 2, time.Minute))

	// the window is inclusive of resetAt
	clock.Advance(time.Minute)
	assert.False(t, l.Allow("k", 2, time.Minute))

	clock.Advance(time.Nanosecond)
	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.True(t, l.Allow("k", 2, time.Minute))
	assert.False(t, l.Allow("k", 2, time.Minute))
}

func TestAllow_ConcurrentCallersNeverExceedMax(t *testing.T) {
	l := New()
	const max = 25

	var allowed atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.Allow("shared", max, time.Hour) {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(max), allowed.Load())
}

func TestMiddleware_Returns429(t *testing.T) {
	e := echo.New()
	e.IPExtractor = echo.ExtractIPDirect()
	l := New()
	e.POST("/contact", func(c echo.Context) error {
		return c.NoContent(http.StatusCreated)
	}, Middleware(l, "contact", 1, time.Hour))

	send := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/contact", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusCreated, send("10.0.0.1:5000"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1:5001"))
	assert.Equal(t, http.StatusCreated, send("10.0.0.2:5000"))
}

func TestIPExtractor_IgnoresForwardingHeadersByDefault(t *testing.T) {
	extract, err := IPExtractor(nil)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "198.51.100.7:4242"
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	req.Header.Set(echo.HeaderXRealIP, "203.0.113.10")

	assert.Equal(t, "198.51.100.7", extract(req))
}

func TestIPExtractor_TrustedProxies(t *testing.T) {
	extract, err := IPExtractor([]string{"192.0.2.0/24", "198.51.100.1"})
	require.NoError(t, err)

	viaProxy := httptest.NewRequest(http.MethodGet, "/", nil)
	viaProxy.RemoteAddr = "192.0.2.10:4242"
	viaProxy.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	assert.Equal(t, "203.0.113.9", extract(viaProxy))

	singleProxy := httptest.NewRequest(http.MethodGet, "/", nil)
	singleProxy.RemoteAddr = "198.51.100.1:4242"
	singleProxy.Header.Set(echo.HeaderXForwardedFor, "203.0.113.11")
	assert.Equal(t, "203.0.113.11", extract(singleProxy))

	untrusted := httptest.NewRequest(http.MethodGet, "/", nil)
	untrusted.RemoteAddr = "10.1.1.1:4242"
	untrusted.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	assert.Equal(t, "10.1.1.1", extract(untrusted))
}

func TestIPExtractor_RejectsBadProxy(t *testing.T) {
	_, err := IPExtractor([]string{"not-an-ip"})
	assert.Error(t, err)
}
