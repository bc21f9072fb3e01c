package observability

import (
	"net"
	"net/http"
	"strings"
)

// ClientIdentity is what ws and audit events record about the caller.
type ClientIdentity struct {
	DeviceID  string
	IP        string
	RequestID string
}

// IdentityFromRequest reads the caller identity from proxy and client headers.
func IdentityFromRequest(r *http.Request) ClientIdentity {
	return ClientIdentity{
		DeviceID:  r.Header.Get("X-Device-Id"),
		IP:        clientIP(r),
		RequestID: r.Header.Get("X-Request-Id"),
	}
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-Ip")); ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}
