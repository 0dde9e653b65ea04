package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/alciverdev/farmatup-API/internal/config"
	"github.com/alciverdev/farmatup-API/internal/domain/user"
	"github.com/alciverdev/farmatup-API/internal/http/handlers"
	"github.com/alciverdev/farmatup-API/internal/http/middlewares"
	"github.com/alciverdev/farmatup-API/internal/observability"
)

// UserRepository is everything the handlers collectively need from the user
// store. The postgres and memory repos both satisfy it.
type UserRepository interface {
	handlers.UserStore
	handlers.UserReader
}

// Deps carries everything the router needs. Assembly is explicit: no
// package-level singletons, so tests can wire in-memory implementations.
type Deps struct {
	Cfg      config.Config
	Log      *slog.Logger
	Users    UserRepository
	Branches handlers.BranchReader
	JWT      middlewares.TokenVerifier
	Issuer   handlers.TokenIssuer
	Metrics  *prometheus.Registry
	Prom     *observability.Prom
	Ping     func() error
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" && d.Cfg.Env != "test" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Request DTOs are closed schemas: unknown body fields are rejected.
	binding.EnableDecoderDisallowUnknownFields = true

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(otelgin.Middleware("farmatup-api"))
	if d.Prom != nil {
		r.Use(d.Prom.GinMiddleware())
	}

	health := handlers.NewHealthHandler(d.Ping)
	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)

	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))
	}

	usersHandler := handlers.NewUsersHandler(d.Users, d.Branches)
	authHandler := handlers.NewAuthHandler(d.Users, d.Issuer)
	branchesHandler := handlers.NewBranchesHandler(d.Branches)
	authMw := middlewares.NewAuthMiddleware(d.JWT)

	r.POST("/users", usersHandler.Register)
	r.GET("/users", usersHandler.ListUsers)
	r.GET("/users/:id", usersHandler.GetUserByID)
	r.PATCH("/users/:id", usersHandler.UpdateUser)
	r.DELETE("/users/:id", usersHandler.DeleteUser)

	limit := d.Cfg.LoginRateLimit
	if limit <= 0 {
		limit = 10
	}
	window := d.Cfg.LoginRateWindow
	if window <= 0 {
		window = time.Minute
	}
	loginLimiter := middlewares.NewRateLimiter(limit, window)

	authGroup := r.Group("/api/auth")
	authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.GET("/me", authMw.RequireAuth(), authHandler.Me)

	r.GET("/branches", authMw.RequireAuth(), authMw.RequireRole(user.RoleAdmin), branchesHandler.ListBranches)

	return r
}
