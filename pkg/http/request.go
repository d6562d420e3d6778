package http

import (
	"net"
	"net/http"
	"strings"
)

// forwardingHeaders are consulted in order before falling back to RemoteAddr
var forwardingHeaders = []string{
	"X-Forwarded-For",
	"Proxy-Client-IP",
	"WL-Proxy-Client-IP",
	"HTTP_CLIENT_IP",
	"HTTP_X_FORWARDED_FOR",
}

// IPConfig holds configuration for IP extraction and validation
type IPConfig struct {
	TrustedProxies []string // CIDR ranges of trusted proxies
	TrustAnyProxy  bool     // Honour forwarding headers from any peer
}

// ExtractClientIP resolves the originating address of a request.
//
// Forwarding headers are only read when the peer is a trusted proxy (or TrustAnyProxy
// is set). The first header that is present, non-empty and not "unknown" wins; for
// comma-separated lists the first entry is the client. Otherwise RemoteAddr is used
// with its port stripped.
func ExtractClientIP(r *http.Request, config *IPConfig) string {
	remoteIP := getRemoteAddr(r)

	if config == nil || !(config.TrustAnyProxy || isTrustedProxy(remoteIP, config.TrustedProxies)) {
		return remoteIP
	}

	for _, header := range forwardingHeaders {
		if ip := firstForwardedValue(r.Header.Get(header)); ip != "" {
			return ip
		}
	}

	return remoteIP
}

// firstForwardedValue returns the first usable entry of a forwarding header value
func firstForwardedValue(value string) string {
	if value == "" {
		return ""
	}
	first := strings.TrimSpace(strings.Split(value, ",")[0])
	if first == "" || strings.EqualFold(first, "unknown") {
		return ""
	}
	return first
}

// getRemoteAddr extracts the IP address from RemoteAddr (removing port if present)
func getRemoteAddr(r *http.Request) string {
	if r.RemoteAddr != "" {
		if ip, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			return ip
		}
		return r.RemoteAddr
	}
	return "unknown"
}

// isTrustedProxy checks if an IP address is within any of the trusted proxy CIDR ranges
func isTrustedProxy(ip string, trustedProxies []string) bool {
	if len(trustedProxies) == 0 {
		return false
	}

	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}

	for _, cidr := range trustedProxies {
		_, ipNet, err := net.ParseCIDR(cidr)
		if err != nil {
			continue // Skip invalid CIDR ranges
		}
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}
