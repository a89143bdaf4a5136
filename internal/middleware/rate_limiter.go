package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/pauloeilson-hash/ctrlpgto/internal/apierror"
)

// rateWindow counts requests from one client inside the current window.
type rateWindow struct {
	mu    sync.Mutex
	count int
	until time.Time
}

var (
	rateWindows   = make(map[string]*rateWindow)
	rateWindowsMu sync.Mutex
)

// RateLimiter caps requests per client IP inside a fixed window. Requests
// over the limit get a 429 with a Retry-After header.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		rateWindowsMu.Lock()
		w, ok := rateWindows[ip]
		if !ok {
			w = &rateWindow{}
			rateWindows[ip] = w
		}
		rateWindowsMu.Unlock()

		w.mu.Lock()
		defer w.mu.Unlock()

		now := time.Now()
		if now.After(w.until) {
			w.count = 0
			w.until = now.Add(window)
		}

		w.count++
		if w.count > limit {
			c.Header("Retry-After", w.until.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("Muitas solicitações. Tente novamente em instantes."))
			return
		}
		c.Next()
	}
}

// Expired windows are dropped periodically so the map does not grow with
// every IP that ever made a request.
const purgeInterval = 5 * time.Minute

func init() {
	go purgeRateWindows()
}

func purgeRateWindows() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		rateWindowsMu.Lock()
		purged := 0
		for ip, w := range rateWindows {
			w.mu.Lock()
			if now.After(w.until) {
				delete(rateWindows, ip)
				purged++
			}
			w.mu.Unlock()
		}
		remaining := len(rateWindows)
		rateWindowsMu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("purged", purged).
				Int("remaining", remaining).
				Msg("rate limiter windows purged")
		}
	}
}
