package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/bruzzonedistribuidora/Ferreteria-Manager-sub001/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// limiter is a sliding-window counter per client IP. Each named limiter owns
// its map; a background goroutine purges IPs whose window expired so the maps
// do not grow with one-off clients.
type limiter struct {
	limit   int
	window  time.Duration
	mensaje string

	mu      sync.Mutex
	entries map[string]*ventana
}

type ventana struct {
	count int
	hasta time.Time
}

const purgeInterval = 5 * time.Minute

func newLimiter(limit int, window time.Duration, mensaje string) *limiter {
	l := &limiter{
		limit:   limit,
		window:  window,
		mensaje: mensaje,
		entries: make(map[string]*ventana),
	}
	go l.purge()
	return l
}

func (l *limiter) middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		now := time.Now()

		l.mu.Lock()
		entry, ok := l.entries[ip]
		if !ok || now.After(entry.hasta) {
			entry = &ventana{hasta: now.Add(l.window)}
			l.entries[ip] = entry
		}
		entry.count++
		excedido := entry.count > l.limit
		hasta := entry.hasta
		l.mu.Unlock()

		if excedido {
			c.Header("Retry-After", hasta.Format(time.RFC1123))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New(l.mensaje))
			return
		}
		c.Next()
	}
}

func (l *limiter) purge() {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		l.mu.Lock()
		purged := 0
		for ip, entry := range l.entries {
			if now.After(entry.hasta) {
				delete(l.entries, ip)
				purged++
			}
		}
		remaining := len(l.entries)
		l.mu.Unlock()

		if purged > 0 {
			log.Debug().
				Int("entries_purged", purged).
				Int("entries_remaining", remaining).
				Msg("rate limiter map purged")
		}
	}
}

// LoginRateLimiter limits login attempts to 20 per minute per IP.
func LoginRateLimiter() gin.HandlerFunc {
	return newLimiter(20, time.Minute,
		"Demasiados intentos de login. Intente en 1 minuto.").middleware()
}

// RateLimiter returns a general-purpose sliding-window rate limiter.
// Typical use: 200 requests per minute per IP on the public endpoints.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	return newLimiter(limit, window,
		"Demasiadas solicitudes. Intente nuevamente en un momento.").middleware()
}
