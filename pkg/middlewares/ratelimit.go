package middleware

import (
	"sync"
	"time"

	"github.com/scanctum/scanctum-web/config"
	"github.com/scanctum/scanctum-web/pkg/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"
)

// visitor tracks one client IP's limiter
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LoginRateLimiter slows credential-guessing against the login and
// signup forms. Per-IP token bucket.
type LoginRateLimiter struct {
	rps   rate.Limit
	burst int
	log   *utils.Logger

	mu       sync.Mutex
	visitors map[string]*visitor
}

func NewLoginRateLimiter(cfg *config.Config, log *utils.Logger) *LoginRateLimiter {
	return &LoginRateLimiter{
		rps:      rate.Limit(cfg.RateLimit.LoginRPS),
		burst:    cfg.RateLimit.LoginBurst,
		log:      log,
		visitors: make(map[string]*visitor),
	}
}

// Limit rejects requests exceeding the per-IP budget with 429
func (l *LoginRateLimiter) Limit() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !l.allow(c.IP()) {
			l.log.WithField("ip", c.IP()).Warn("Login rate limit exceeded")
			return c.Status(fiber.StatusTooManyRequests).Render("error", fiber.Map{
				"Title": "Too Many Requests",
				"Error": "Too many attempts. Please wait a moment and try again.",
			})
		}
		return c.Next()
	}
}

func (l *LoginRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = time.Now()

	// Opportunistic prune of idle entries
	if len(l.visitors) > 1024 {
		cutoff := time.Now().Add(-time.Hour)
		for key, vis := range l.visitors {
			if vis.lastSeen.Before(cutoff) {
				delete(l.visitors, key)
			}
		}
	}

	return v.limiter.Allow()
}
