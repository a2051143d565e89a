package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"

	"github.com/was-labs/webauth/internal/auth"
	"github.com/was-labs/webauth/internal/logging"
	"github.com/was-labs/webauth/internal/metrics"
	"github.com/was-labs/webauth/internal/ratelimit"
	"github.com/was-labs/webauth/internal/session"
	"github.com/was-labs/webauth/internal/token"
	"github.com/was-labs/webauth/internal/users"
)

func newTestRouter(t *testing.T, limits map[string]ratelimit.Config) *mux.Router {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	codec, err := token.NewCodec(token.Config{Secret: []byte("0123456789abcdef0123456789abcdef")})
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	log := logging.NewDefault()
	set := &metrics.Set{}
	store := session.NewRedisStore(rdb)
	repo := users.NewMemoryRepository()
	svc := auth.NewService(repo, codec, store, time.Hour, log, set)

	h := NewHandlers(svc, repo, testCookieName, log)
	return NewRouter(h,
		Authenticate(codec, store, testCookieName, log, set),
		RateLimit(ratelimit.NewRegistry(limits), log, set),
	)
}

func doJSON(t *testing.T, r http.Handler, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	return env
}

const registerBody = `{"userName":"alice1","password":"secret1","email":"a@example.com"}`
const loginBody = `{"userName":"alice1","password":"secret1"}`

func TestEndToEndAuthFlow(t *testing.T) {
	router := newTestRouter(t, nil)

	// Register succeeds once, then conflicts.
	rr := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("register status = %d, body %s", rr.Code, rr.Body.String())
	}
	rr = doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate register status = %d, want 409", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Code != 0 {
		t.Fatalf("duplicate register envelope code = %d, want 0", env.Code)
	}

	// Login sets the token cookie and returns the token in the body.
	rr = doJSON(t, router, http.MethodPost, "/auth/login", loginBody, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	data, _ := env.Data.(map[string]any)
	if tok, _ := data["token"].(string); tok == "" {
		t.Fatalf("login response missing token: %v", env.Data)
	}

	cookies := rr.Result().Cookies()
	var tokenCookie *http.Cookie
	for _, c := range cookies {
		if c.Name == testCookieName {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("login did not set the token cookie")
	}
	if !tokenCookie.HttpOnly || !tokenCookie.Secure || tokenCookie.Path != "/" ||
		tokenCookie.SameSite != http.SameSiteStrictMode {
		t.Fatalf("cookie attributes wrong: %+v", tokenCookie)
	}
	if tokenCookie.MaxAge != int(time.Hour.Seconds()) {
		t.Fatalf("cookie MaxAge = %d, want %d", tokenCookie.MaxAge, int(time.Hour.Seconds()))
	}

	// The cookie authenticates /user/form.
	rr = doJSON(t, router, http.MethodGet, "/user/form", "", []*http.Cookie{tokenCookie})
	if rr.Code != http.StatusOK {
		t.Fatalf("form with cookie status = %d, body %s", rr.Code, rr.Body.String())
	}

	// Logout clears the cookie and deletes the session.
	rr = doJSON(t, router, http.MethodPost, "/auth/logout", "", []*http.Cookie{tokenCookie})
	if rr.Code != http.StatusOK {
		t.Fatalf("logout status = %d, body %s", rr.Code, rr.Body.String())
	}
	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == testCookieName {
			cleared = c
		}
	}
	if cleared == nil || cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Fatalf("logout cookie = %+v, want emptied with Max-Age=0", cleared)
	}

	// The same (still cryptographically valid) cookie no longer authenticates.
	rr = doJSON(t, router, http.MethodGet, "/user/form", "", []*http.Cookie{tokenCookie})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("form after logout status = %d, want 401", rr.Code)
	}
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := doJSON(t, router, http.MethodGet, "/user/form", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("/user/form status = %d, want 401", rr.Code)
	}
	rr = doJSON(t, router, http.MethodPost, "/auth/logout", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("/auth/logout status = %d, want 401", rr.Code)
	}

	// Unmatched paths default to authenticated-required.
	rr = doJSON(t, router, http.MethodGet, "/something/else", "", nil)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unknown path status = %d, want 401", rr.Code)
	}
}

func TestHomeIsPublic(t *testing.T) {
	router := newTestRouter(t, nil)

	rr := doJSON(t, router, http.MethodGet, "/user/home", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("/user/home status = %d, want 200", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Data != "hello" {
		t.Fatalf("/user/home data = %v, want hello", env.Data)
	}
}

func TestAnonymousOnlyRoutesRejectAuthenticated(t *testing.T) {
	router := newTestRouter(t, nil)

	doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	rr := doJSON(t, router, http.MethodPost, "/auth/login", loginBody, nil)

	var tokenCookie *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == testCookieName {
			tokenCookie = c
		}
	}
	if tokenCookie == nil {
		t.Fatal("login did not set the token cookie")
	}

	rr = doJSON(t, router, http.MethodPost, "/auth/login", loginBody, []*http.Cookie{tokenCookie})
	if rr.Code != http.StatusForbidden {
		t.Fatalf("login while authenticated status = %d, want 403", rr.Code)
	}
}

func TestRegisterRateLimited(t *testing.T) {
	router := newTestRouter(t, map[string]ratelimit.Config{
		"/auth/register": {Capacity: 1, RefillPerSecond: 0},
	})

	rr := doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("first register status = %d", rr.Code)
	}

	// The denial fires before any handler logic: this would otherwise be a
	// duplicate-registration conflict.
	rr = doJSON(t, router, http.MethodPost, "/auth/register", registerBody, nil)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second register status = %d, want 429", rr.Code)
	}
	if env := decodeEnvelope(t, rr); env.Code != 0 {
		t.Fatalf("rate limit envelope code = %d, want 0", env.Code)
	}

	// Other routes share no bucket with the guarded one.
	rr = doJSON(t, router, http.MethodGet, "/user/home", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("/user/home status = %d, want 200", rr.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t, nil)

	cases := []string{
		`{"userName":"ab","password":"secret1","email":"a@example.com"}`,
		`{"userName":"alice1","password":"pw","email":"a@example.com"}`,
		`{"userName":"alice1","password":"secret1","email":"not-an-email"}`,
		`not json`,
	}
	for _, body := range cases {
		rr := doJSON(t, router, http.MethodPost, "/auth/register", body, nil)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("register %q status = %d, want 400", body, rr.Code)
		}
	}
}
