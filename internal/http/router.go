package http

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/geocoder89/eventmanager/internal/http/handlers"
	"github.com/geocoder89/eventmanager/internal/http/middlewares"
	"github.com/geocoder89/eventmanager/internal/observability"
)

type Options struct {
	Env            string
	ServiceName    string
	AllowedOrigins []string
	MaxBodyBytes   int64
	RateLimitRPS   float64
	RateLimitBurst int
}

// Deps are the collaborators the routes are wired to. Gatherer may be nil
// to leave /metrics unmounted.
type Deps struct {
	Log      *slog.Logger
	Prom     *observability.Prom
	Gatherer prometheus.Gatherer

	Tokens   middlewares.TokenVerifier
	Health   *handlers.HealthHandler
	Users    *handlers.UsersHandler
	Events   *handlers.EventsHandler
	Register *handlers.RegistrationHandler
}

func NewRouter(opts Options, deps Deps) *gin.Engine {
	if opts.Env != "dev" && gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	if opts.ServiceName != "" {
		r.Use(otelgin.Middleware(opts.ServiceName))
	}
	r.Use(middlewares.RequestLogger(deps.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(opts.AllowedOrigins))
	if deps.Prom != nil {
		r.Use(deps.Prom.GinHandleMiddleware())
	}
	if opts.MaxBodyBytes > 0 {
		r.Use(middlewares.MaxBodyBytes(opts.MaxBodyBytes))
	}

	// health
	r.GET("/", deps.Health.Root)
	r.GET("/healthz", deps.Health.Healthz)
	r.GET("/readyz", deps.Health.Readyz)
	if deps.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	authMW := middlewares.NewAuthMiddleware(deps.Tokens)

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())
	// every caller is limited per address; authenticated routes also per user
	var throttleAuthed gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if opts.RateLimitRPS > 0 {
		anon := middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
		api.Use(anon.Middleware(middlewares.KeyByIP))

		authed := middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst)
		throttleAuthed = authed.Middleware(middlewares.KeyByUserOrIP)
	}

	users := api.Group("/users")
	users.POST("/register", deps.Users.Register)
	users.POST("/login", deps.Users.Login)
	users.POST("/token/refresh", deps.Users.Refresh)
	users.POST("/logout", deps.Users.Logout)
	users.GET("/me", authMW.RequireAuth(), throttleAuthed, deps.Users.Me)

	events := api.Group("/events")
	events.GET("", authMW.OptionalAuth(), deps.Events.ListEvents)
	events.GET("/:id", authMW.OptionalAuth(), deps.Events.GetEventById)
	events.GET("/:id/participants", deps.Register.ListParticipants)

	// writes
	writes := events.Group("", authMW.RequireAuth(), throttleAuthed)
	writes.POST("", deps.Events.CreateEvent)
	writes.PUT("/:id", deps.Events.UpdateEvent)
	writes.PATCH("/:id", deps.Events.PatchEvent)
	writes.DELETE("/:id", deps.Events.DeleteEvent)
	writes.POST("/:id/register", deps.Register.Register)
	writes.DELETE("/:id/register", deps.Register.Unregister)

	return r
}
