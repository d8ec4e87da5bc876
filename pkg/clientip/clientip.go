package clientip

import (
	"net"
	"net/http"
	"strings"
)

// FromRequest returns the peer address of the request, without the port.
// It trusts r.RemoteAddr only and ignores proxy headers, which is the right
// key for rate limiting when clients connect to the app directly.
func FromRequest(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return strings.TrimSpace(host)
}
