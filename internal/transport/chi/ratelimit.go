package chi

import (
	"math"
	"net/http"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/knnvote/internal/domain"
)

// RateLimitMiddleware applies one token bucket to every non-exempt request.
// rps <= 0 disables limiting.
func RateLimitMiddleware(rps float64, burst int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rps <= 0 {
			return next
		}
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		retryAfter := strconv.Itoa(int(math.Ceil(1 / rps)))

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow() {
				w.Header().Set("Retry-After", retryAfter)
				writeError(w, http.StatusTooManyRequests, ErrorCodeRateLimited, domain.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
