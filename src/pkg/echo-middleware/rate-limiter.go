package echomw

import (
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// Ticket parsing is CPU/process heavy (OCR, PDF rasterization), so unlike a
// typical per-client API the capacity that matters is total throughput
// across all clients, not requests-per-IP. This reuses the teacher's
// golang.org/x/time/rate limiter as a single global gate instead of one
// limiter per client IP.
var (
	mu   sync.Mutex
	gate = rate.NewLimiter(rate.Limit(4), 4)
)

// UpdateRateLimits reconfigures the global gate: maxInFlightParses requests
// per second, with a burst of the same size.
func UpdateRateLimits(maxInFlightParses int) {
	mu.Lock()
	defer mu.Unlock()
	if maxInFlightParses <= 0 {
		maxInFlightParses = 1
	}
	gate = rate.NewLimiter(rate.Limit(maxInFlightParses), maxInFlightParses)
}

func allow() bool {
	mu.Lock()
	defer mu.Unlock()
	return gate.Allow()
}

// RateLimiterMiddleware rejects a request with 429 once the global parse
// throughput gate is exhausted, instead of throttling by client IP.
func RateLimiterMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !allow() {
			return c.String(http.StatusTooManyRequests, "Too many requests")
		}
		return next(c)
	}
}
