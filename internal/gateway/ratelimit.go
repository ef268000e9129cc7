package gateway

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	appErrors "github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/errors"
	"github.com/percivalmacalintal/Distributed-Fault-Tolerance/pkg/response"
)

const (
	maxTrackedClients = 10000
	clientIdleExpiry  = 10 * time.Minute
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces a per-client-IP token bucket. A non-positive rps
// disables limiting entirely.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst < 1 {
		burst = 1
	}

	var mu sync.Mutex
	clients := make(map[string]*clientLimiter)

	return func(c *gin.Context) {
		now := time.Now()

		mu.Lock()
		cl, ok := clients[c.ClientIP()]
		if !ok {
			if len(clients) >= maxTrackedClients {
				for ip, tracked := range clients {
					if now.Sub(tracked.lastSeen) > clientIdleExpiry {
						delete(clients, ip)
					}
				}
			}
			cl = &clientLimiter{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
			clients[c.ClientIP()] = cl
		}
		cl.lastSeen = now
		mu.Unlock()

		if !cl.limiter.Allow() {
			response.Error(c, appErrors.New("RATE_LIMITED", http.StatusTooManyRequests, "too many requests"))
			c.Abort()
			return
		}

		c.Next()
	}
}
