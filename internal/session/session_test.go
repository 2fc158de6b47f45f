package session

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/vesaa/effectlab/internal/hooks"
	"github.com/vesaa/effectlab/internal/mistakes"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

func TestSignerRoundTrip(t *testing.T) {
	s, err := NewSigner("hunter2", time.Minute)
	require.NoError(t, err)
	tok, err := s.Issue("abc")
	require.NoError(t, err)

	sid, err := s.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)

	// Same secret, same key.
	s2, err := NewSigner("hunter2", time.Minute)
	require.NoError(t, err)
	sid, err = s2.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "abc", sid)
}

func TestSignerRejects(t *testing.T) {
	s, err := NewSigner("", time.Minute)
	require.NoError(t, err)
	other, err := NewSigner("", time.Minute)
	require.NoError(t, err)

	tok, err := other.Issue("abc")
	require.NoError(t, err)
	_, err = s.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = s.Parse("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewSigner("k", -time.Minute)
	require.NoError(t, err)
	tok, err = expired.Issue("abc")
	require.NoError(t, err)
	_, err = expired.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Add(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func newTestStore(t *testing.T, consoles map[string]*hooks.MemoryConsole) (*Store, *fakeClock, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var closed []string
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	s := NewStore(Config{
		TTL:       time.Minute,
		MaxTimers: 8,
		Env:       mistakes.Env{Tick: time.Hour, Delay: time.Hour},
		Console: func(sid, route, variant string) hooks.Console {
			if consoles == nil {
				return hooks.Discard
			}
			mu.Lock()
			defer mu.Unlock()
			key := route + "/" + variant
			if consoles[key] == nil {
				consoles[key] = hooks.NewMemoryConsole()
			}
			return consoles[key]
		},
		OnClose: func(sid string) {
			mu.Lock()
			closed = append(closed, sid)
			mu.Unlock()
		},
	})
	s.now = clock.Now
	t.Cleanup(s.Shutdown)
	return s, clock, &closed
}

func TestStoreOpenReusesWindow(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	w := s.Open("")
	assert.NotEmpty(t, w.ID)
	assert.Same(t, w, s.Open(w.ID))
	assert.NotSame(t, w, s.Open("unknown"))
	assert.Equal(t, 2, s.Count())
}

func TestVisitRemountsOnRouteChange(t *testing.T) {
	consoles := map[string]*hooks.MemoryConsole{}
	s, _, _ := newTestStore(t, consoles)
	w := s.Open("")

	m1, _ := mistakes.ByID(1)
	m6, _ := mistakes.ByID(6)

	p1, err := w.Visit(m1)
	require.NoError(t, err)
	again, err := w.Visit(m1)
	require.NoError(t, err)
	assert.Same(t, p1, again)
	assert.Equal(t, 1, consoles["mistake-1/correct"].Count("Runs only once on mount"))

	p6, err := w.Visit(m6)
	require.NoError(t, err)
	assert.Nil(t, w.Page(m1))
	assert.Same(t, p6, w.Page(m6))
	assert.ErrorIs(t, p1.Dispatch(mistakes.Wrong, "rerender"), hooks.ErrUnmounted)

	p1b, err := w.Visit(m1)
	require.NoError(t, err)
	assert.NotSame(t, p1, p1b)
	assert.Equal(t, 2, consoles["mistake-1/correct"].Count("Runs only once on mount"))
}

func TestLeakedTimersLiveUntilWindowCloses(t *testing.T) {
	s, clock, closed := newTestStore(t, nil)
	w := s.Open("")
	m3, _ := mistakes.ByID(3)

	page, err := w.Visit(m3)
	require.NoError(t, err)
	require.NoError(t, page.Dispatch(mistakes.Wrong, "start"))
	require.NoError(t, page.Dispatch(mistakes.Correct, "start"))
	assert.Equal(t, 2, s.LiveTimers())

	w.Leave()
	assert.Equal(t, 1, s.LiveTimers())

	clock.Add(30 * time.Second)
	assert.Zero(t, s.Sweep())
	clock.Add(time.Minute)
	assert.Equal(t, 1, s.Sweep())

	assert.Equal(t, 0, s.LiveTimers())
	assert.Equal(t, 0, w.LiveTimers())
	assert.Equal(t, []string{w.ID}, *closed)
	_, err = w.Visit(m3)
	assert.ErrorIs(t, err, hooks.ErrUnmounted)
}

func TestMiddlewareIssuesAndHonoursCookie(t *testing.T) {
	s, _, _ := newTestStore(t, nil)
	signer, err := NewSigner("secret", time.Minute)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Middleware(s, signer))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, FromContext(c).ID) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	first := rec.Body.String()
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, first, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, first, rec.Body.String())
	assert.Equal(t, 2, s.Count())
}

func TestOpenEvictsLeastRecentlySeenWindow(t *testing.T) {
	s, clock, closed := newTestStore(t, nil)
	s.cfg.MaxWindows = 2

	first := s.Open("")
	clock.Add(time.Second)
	second := s.Open("")
	clock.Add(time.Second)
	s.Open(first.ID)
	clock.Add(time.Second)

	m3, _ := mistakes.ByID(3)
	page, err := second.Visit(m3)
	require.NoError(t, err)
	require.NoError(t, page.Dispatch(mistakes.Wrong, "start"))
	require.Equal(t, 1, s.LiveTimers())

	third := s.Open("")
	assert.Equal(t, 2, s.Count())
	assert.Equal(t, []string{second.ID}, *closed)
	_, ok := s.Get(second.ID)
	assert.False(t, ok)
	_, ok = s.Get(first.ID)
	assert.True(t, ok)
	_, ok = s.Get(third.ID)
	assert.True(t, ok)
	assert.Equal(t, 0, s.LiveTimers())
}
