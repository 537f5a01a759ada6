package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/obs"
	"github.com/catsflats/backend/internal/service"
)

const (
	authContextKey    = "auth_context"
	initDataHeader    = "X-Telegram-Init-Data"
	sessionHeader     = "x-auth-token"
	maxInitDataLength = 8192
)

// AuthMiddleware is the gate in front of every /api route. A request either
// presents an existing session token (verified, no new token issued) or a
// fresh Telegram init data payload (verified, consumed by the replay guard,
// and exchanged for a session token on the response). Anything else is
// rejected.
func AuthMiddleware(auth *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if token := pickSessionToken(c); token != "" {
			payload, err := auth.VerifySessionToken(token)
			if err != nil {
				abortError(c, err)
				return
			}
			c.Set(authContextKey, &model.AuthContext{
				User:         payload.User,
				AuthDate:     payload.AuthDate,
				SessionToken: token,
			})
			c.Next()
			return
		}

		initData := pickInitData(c)
		if initData == "" {
			abortError(c, apperr.Forbidden("auth token is missing"))
			return
		}

		authCtx, err := auth.VerifyInitData(initData)
		if err != nil {
			abortError(c, err)
			return
		}

		token, err := auth.IssueSessionToken(authCtx.User, authCtx.AuthDate)
		if err != nil {
			abortError(c, err)
			return
		}
		authCtx.SessionToken = token
		authCtx.TokenIssued = true

		// The response carries a freshly minted credential; it must never be
		// cached by an intermediary.
		c.Header(sessionHeader, token)
		c.Header("Cache-Control", "no-store")

		c.Set(authContextKey, authCtx)
		c.Next()
	}
}

// GetAuthContext returns the verified identity attached by AuthMiddleware.
func GetAuthContext(c *gin.Context) *model.AuthContext {
	if value, ok := c.Get(authContextKey); ok {
		if authCtx, ok := value.(*model.AuthContext); ok {
			return authCtx
		}
	}
	return nil
}

func pickSessionToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return strings.TrimSpace(c.GetHeader(sessionHeader))
}

// pickInitData checks the dedicated header, then the query string, then a
// JSON body field, in that priority order. The body is restored so handlers
// can still bind it.
func pickInitData(c *gin.Context) string {
	if header := c.GetHeader(initDataHeader); header != "" {
		return header
	}
	if query := c.Query("initData"); query != "" {
		return query
	}

	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "application/json") {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInitDataLength+1))
	c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(raw), c.Request.Body))
	if err != nil {
		return ""
	}

	var body struct {
		InitData string `json:"initData"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.InitData
}

// CORSMiddleware mirrors the allowed origins back and exposes the session
// header so browser clients can read freshly issued tokens.
func CORSMiddleware(allowedOrigins []string) gin.HandlerFunc {
	allowAll := false
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "*" {
			allowAll = true
			continue
		}
		if trimmed != "" {
			originMap[trimmed] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			_, allowed := originMap[origin]
			if allowAll || allowed {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				c.Header("Access-Control-Allow-Credentials", "true")
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Telegram-Init-Data, x-auth-token")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				c.Header("Access-Control-Expose-Headers", sessionHeader)
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}

		c.Next()
	}
}

// RateLimitMiddleware bounds each caller to a per-minute budget, keyed by
// session token when present and client address otherwise. Unlike the bot's
// silent drop, HTTP callers get an explicit 429 with a retry hint. Stale
// buckets are pruned lazily on request, gated by a cooldown, so the
// middleware owns no background goroutine.
func RateLimitMiddleware(perMinute int) gin.HandlerFunc {
	type bucket struct {
		lim      *rate.Limiter
		lastSeen time.Time
	}

	const (
		bucketTTL       = 5 * time.Minute
		cleanupInterval = time.Minute
	)

	var (
		mu            sync.Mutex
		buckets       = make(map[string]*bucket)
		lastCleanupAt time.Time
	)

	perSecond := rate.Limit(float64(perMinute) / 60.0)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		// localhost is allow-listed for health checks
		if ip == "127.0.0.1" || ip == "::1" {
			c.Next()
			return
		}

		key := limiterKey(c, ip)
		now := time.Now()

		mu.Lock()
		if now.Sub(lastCleanupAt) > cleanupInterval {
			lastCleanupAt = now
			for k, b := range buckets {
				if now.Sub(b.lastSeen) > bucketTTL {
					delete(buckets, k)
				}
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{lim: rate.NewLimiter(perSecond, perMinute)}
			buckets[key] = b
		}
		b.lastSeen = now
		mu.Unlock()

		if !b.lim.Allow() {
			obs.RateLimitDrops.WithLabelValues("http").Inc()
			c.Header("Retry-After", "60")
			c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:   string(apperr.KindRateLimited),
				Message: "too many requests, try again in a minute",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// limiterKey buckets authenticated callers by token so NAT'd users are not
// throttled together, falling back to the client address.
func limiterKey(c *gin.Context, ip string) string {
	token := c.GetHeader(sessionHeader)
	if token == "" {
		token = c.GetHeader("Authorization")
	}
	if token != "" {
		if len(token) > 32 {
			token = token[:32]
		}
		return "token:" + token
	}
	return "ip:" + ip
}
