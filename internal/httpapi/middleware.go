package httpapi

import (
	"net/http"

	"github.com/was-labs/webauth/internal/auth"
	"github.com/was-labs/webauth/internal/logging"
	"github.com/was-labs/webauth/internal/metrics"
	"github.com/was-labs/webauth/internal/ratelimit"
	"github.com/was-labs/webauth/internal/session"
	"github.com/was-labs/webauth/internal/token"
)

// Authenticate is the per-request identity stage. It extracts the token
// from the named cookie (header of the same name as fallback), verifies it,
// confirms a live session, and attaches the identity to the request
// context. It never rejects a request itself: every failure mode degrades
// to "anonymous" and the accept/reject decision belongs to the
// access-control wrappers downstream.
func Authenticate(
	codec *token.Codec,
	sessions session.Store,
	cookieName string,
	log logging.Logger,
	set *metrics.Set,
) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tok := tokenFromRequest(r, cookieName)
			if tok == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := codec.Verify(tok)
			if err != nil {
				set.Inc(metrics.TokenRejected)
				log.Warn(r.Context(), "token rejected", "err", err, "ip", clientIP(r))
				next.ServeHTTP(w, r)
				return
			}

			rec, err := sessions.Get(r.Context(), claims.UserID)
			if err != nil {
				// Store failures are surfaced in the log but do not abort
				// the request; it simply proceeds anonymous.
				log.Error(r.Context(), "session lookup failed", "err", err, "userId", claims.UserID)
				next.ServeHTTP(w, r)
				return
			}
			if rec == nil {
				// Valid token, no live session: not logged in.
				next.ServeHTTP(w, r)
				return
			}

			ident := &auth.Identity{
				UserID:      rec.UserID,
				UserName:    rec.UserName,
				Authorities: rec.Authorities,
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

func tokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}
	return r.Header.Get(cookieName)
}

// RequireAuth rejects requests that reach a protected route without an
// identity context.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "unauthenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous rejects already-authenticated callers from routes meant
// for anonymous users only (login, register).
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if IdentityFromContext(r.Context()) != nil {
			writeError(w, http.StatusForbidden, "already authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimit guards throttled routes before any handler logic. The bucket is
// keyed by route path and shared by all callers; the client IP appears only
// in the denial log line.
func RateLimit(reg *ratelimit.Registry, log logging.Logger, set *metrics.Set) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := reg.Acquire(r.URL.Path); err != nil {
				set.Inc(metrics.RegisterRateLimited)
				log.Warn(r.Context(), "rate limit exceeded", "ip", clientIP(r), "uri", r.URL.Path)
				writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
