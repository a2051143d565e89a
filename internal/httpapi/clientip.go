package httpapi

import (
	"net"
	"net/http"
	"strings"
)

// clientIP resolves the caller's address for log lines only: it prefers
// X-Forwarded-For, then X-Real-IP, then the raw connection address. It is
// deliberately not part of any rate-limit bucket key.
func clientIP(r *http.Request) string {
	ip := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if ip != "" && !strings.EqualFold(ip, "unknown") {
		// First hop of a comma-separated chain.
		if i := strings.IndexByte(ip, ','); i >= 0 {
			ip = strings.TrimSpace(ip[:i])
		}
		return ip
	}

	ip = strings.TrimSpace(r.Header.Get("X-Real-IP"))
	if ip != "" && !strings.EqualFold(ip, "unknown") {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
