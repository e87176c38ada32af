package routes

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"eventapi/middlewares"
	"eventapi/services"
	"eventapi/utils"
)

// Limits tunes the in-memory rate limiters. Zero fields take the defaults.
type Limits struct {
	GlobalRPS   float64
	GlobalBurst int
	AuthRPS     float64
	AuthBurst   int
	UserRPS     float64
	UserBurst   int
}

func (l Limits) withDefaults() Limits {
	if l.GlobalRPS == 0 {
		l.GlobalRPS, l.GlobalBurst = 20, 40
	}
	if l.AuthRPS == 0 {
		l.AuthRPS, l.AuthBurst = 0.5, 2
	}
	if l.UserRPS == 0 {
		l.UserRPS, l.UserBurst = 5, 10
	}
	return l
}

// Deps is everything the HTTP layer needs. Redis is optional: without it the
// response cache and the daily quota are off.
type Deps struct {
	Users        *services.UserService
	Events       *services.EventService
	Participants *services.ParticipantService
	Locations    *services.LocationService

	Tokens      middlewares.TokenVerifier
	Redis       *redis.Client
	Invalidator *utils.CacheInvalidator

	CacheTTL        time.Duration
	QuotaDailyLimit int
	Limits          Limits

	// Health reports backend readiness for GET /health; nil means always ok.
	Health func(ctx context.Context) error
	Logger zerolog.Logger
}

type handlers struct {
	Deps
	logger zerolog.Logger
}

// RegisterRoutes mounts every endpoint on server. The returned func stops the
// limiters' background eviction.
func RegisterRoutes(server *gin.Engine, d Deps) (stop func()) {
	h := &handlers{Deps: d, logger: d.Logger.With().Str("component", "http").Logger()}
	limits := d.Limits.withDefaults()

	server.GET("/health", h.health)
	server.GET("/metrics", metricsHandler())

	// global per-IP limit
	globalLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     limits.GlobalRPS,
		Burst:   limits.GlobalBurst,
		IdleTTL: 3 * time.Minute,
	})
	server.Use(globalLimiter.Middleware(func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}))

	// signup and login get a much tighter per-IP limit
	authLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     limits.AuthRPS,
		Burst:   limits.AuthBurst,
		IdleTTL: 10 * time.Minute,
	})
	server.POST("/signup",
		authLimiter.Middleware(func(c *gin.Context) string { return "signup:" + c.ClientIP() }),
		h.signup,
	)
	server.POST("/login",
		authLimiter.Middleware(func(c *gin.Context) string { return "login:" + c.ClientIP() }),
		h.login,
	)

	// everything below needs a Bearer token
	auth := server.Group("/")
	auth.Use(middlewares.Authenticate(d.Tokens))

	// after Authenticate, so the bucket is per user rather than per IP

	userLimiter := middlewares.NewRateLimiter(middlewares.LimiterConfig{
		RPS:     limits.UserRPS,
		Burst:   limits.UserBurst,
		IdleTTL: 10 * time.Minute,
	})
	auth.Use(userLimiter.Middleware(func(c *gin.Context) string {
		return "u:" + strconv.FormatInt(c.GetInt64(middlewares.UserIDKey), 10)
	}))

	// quota before cache: cached hits still count against the daily quota
	if d.Redis != nil {
		if d.QuotaDailyLimit > 0 {
			auth.Use(middlewares.Quota(d.Redis, middlewares.QuotaRule{
				Limit:  d.QuotaDailyLimit,
				Window: 24 * time.Hour,
				KeyFn:  middlewares.UserQuotaKey,
			}))
		}
		if d.CacheTTL > 0 {
			auth.Use(middlewares.ResponseCache(d.Redis, d.CacheTTL))
		}
	}

	auth.GET("/users", h.searchUsers)
	auth.GET("/users/:id", h.getUser)
	auth.PUT("/users/:id", h.updateUser)
	auth.PATCH("/users/:id", h.patchUser)
	auth.DELETE("/users/:id", h.deleteUser)

	auth.POST("/locations", h.createLocation)
	auth.GET("/locations", h.listLocations)
	auth.GET("/locations/:id", h.getLocation)
	auth.DELETE("/locations/:id", h.deleteLocation)

	auth.POST("/events", h.createEvent)
	auth.GET("/events", h.listEvents)
	auth.GET("/events/passados", h.listPastEvents)
	auth.GET("/events/futuros", h.listFutureEvents)
	auth.GET("/events/:id", h.getEvent)
	auth.DELETE("/events/:id", h.deleteEvent)

	auth.POST("/events/:id/participants", h.addParticipant)
	auth.GET("/events/:id/participants", h.listParticipants)
	auth.GET("/events/:id/participants/dashboard", h.dashboard)
	auth.PUT("/events/:id/participants/status", h.updateStatusFromBody)
	auth.PUT("/events/:id/participants/:userId/status", h.updateStatus)
	auth.DELETE("/events/:id/participants/:userId", h.removeParticipant)

	return func() {
		globalLimiter.Stop()
		authLimiter.Stop()
		userLimiter.Stop()
	}
}
