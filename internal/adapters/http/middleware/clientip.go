package middleware

import (
	"net"
	"net/http"
	"strings"
)

// Sentinel client addresses.
const (
	LocalIP   = "local"
	UnknownIP = "unknown"
)

// ClientIP returns the address used for cooldowns and rate limits: the first
// X-Forwarded-For entry, else X-Real-IP, else the RemoteAddr host.
// Values that do not parse as an IP are skipped, so stored addresses are
// always a canonical IP, LocalIP or UnknownIP.
// Loopback addresses collapse to LocalIP so IPv4 and IPv6 localhost match.
func ClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := normalizeIP(first); ip != "" {
			return ip
		}
	}
	if ip := normalizeIP(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if ip := normalizeIP(host); ip != "" {
		return ip
	}
	return UnknownIP
}

func normalizeIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(strings.Trim(s, "[]"))
	if ip == nil {
		return ""
	}
	if ip.IsLoopback() {
		return LocalIP
	}
	return ip.String()
}
