package middleware

import (
	"net/http"
	"time"

	pkghttp "github.com/BellSoftNetwork/ResortManagementSystem-sub001/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds request flood limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
	IPConfig          *pkghttp.IPConfig
}

// RateLimitByIP limits raw request volume per client address. It sits in front of the
// login guard and counts every request, not failed credentials.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			return pkghttp.ExtractClientIP(r, config.IPConfig), nil
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			pkghttp.WriteTooManyRequests(w, "rate_limited", "Too many requests. Please slow down.", time.Minute)
		}),
	)
}
