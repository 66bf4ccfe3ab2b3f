package http

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/geocoder89/schoolhub/internal/auth"
	"github.com/geocoder89/schoolhub/internal/cache"
	"github.com/geocoder89/schoolhub/internal/config"
	"github.com/geocoder89/schoolhub/internal/db"
	"github.com/geocoder89/schoolhub/internal/http/handlers"
	"github.com/geocoder89/schoolhub/internal/http/middlewares"
	"github.com/geocoder89/schoolhub/internal/observability"
	"github.com/geocoder89/schoolhub/internal/redisclient"
	"github.com/geocoder89/schoolhub/internal/repo/memory"
	"github.com/geocoder89/schoolhub/internal/repo/postgres"
	"github.com/geocoder89/schoolhub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const (
	serviceName  = "schoolhub"
	maxBodyBytes = 1 << 20
)

var errNoPool = errors.New("postgres store selected but no pool was provided")

type userStore interface {
	handlers.UsersStore
	auth.UserFinder
}

type stores struct {
	users   userStore
	schools handlers.SchoolsStore
}

func newStores(cfg config.Config, pool *pgxpool.Pool, prom *observability.Prom) (stores, error) {
	if cfg.StoreDriver == "memory" {
		return stores{
			users:   memory.NewUsersRepo(),
			schools: memory.NewSchoolsRepo(),
		}, nil
	}

	if pool == nil {
		return stores{}, errNoPool
	}

	return stores{
		users:   postgres.NewUsersRepo(pool, prom),
		schools: postgres.NewSchoolsRepo(pool, prom),
	}, nil
}

func NewRouter(log *slog.Logger, pool *pgxpool.Pool, cfg config.Config, rdb *redisclient.Client) (*gin.Engine, error) {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	// metrics live on their own registry so routers can be built more than once
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// middleware

	r.Use(gin.Recovery())
	if cfg.Otel.Enabled {
		r.Use(otelgin.Middleware(serviceName))
	}
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(cfg.AllowedOrigins()))
	r.Use(middlewares.MaxBodyBytes(maxBodyBytes))

	// wire up repositories

	st, err := newStores(cfg, pool, prom)
	if err != nil {
		return nil, err
	}

	hasher := security.NewBcryptHasher(cfg.BcryptCost)

	seedCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()

	if err := db.EnsureAdminUser(seedCtx, st.users, hasher, cfg.Admin, log); err != nil {
		return nil, err
	}

	tokens, err := auth.NewManagerFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	authn, err := auth.NewAuthenticator(st.users, hasher)
	if err != nil {
		return nil, err
	}

	guard := auth.NewGuard(tokens, st.users)
	authMW := middlewares.NewAuthMiddleware(guard, log)

	var listCache cache.Store = cache.New(cfg.CacheTTL())
	if rdb != nil {
		listCache = cache.NewRedisStore(rdb.Raw(), cfg.CacheTTL(), log)
	}

	// health

	checks := map[string]handlers.ReadinessCheck{}
	if pool != nil {
		checks["db"] = func(ctx context.Context) error { return pool.Ping(ctx) }
	}
	if rdb != nil {
		checks["redis"] = rdb.Ping
	}

	h := handlers.NewHealthHandler(checks)

	r.GET("/", handlers.Welcome)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	// Wire up more handlers
	authHandler := handlers.NewAuthHandler(st.users, hasher, authn, tokens)
	usersHandler := handlers.NewUsersHandler(st.users, hasher)
	schoolsHandler := handlers.NewSchoolsHandlerWithCache(st.schools, listCache)

	privileged := authMW.RequireRole(auth.PrivilegedRoles...)

	v1 := r.Group("/api/v1")

	users := v1.Group("/users")
	{
		users.POST("/register", middlewares.RequireJSON(), authHandler.Register)
		// OAuth2 password form, so no RequireJSON here
		users.POST("/login", authHandler.Login)
		users.POST("/logout", authHandler.Logout)

		users.GET("/me", authMW.RequireAuth(), authHandler.Me)
		users.PUT("/me/password", authMW.RequireAuth(), middlewares.RequireJSON(), authHandler.ChangePassword)
		users.GET("/all", authMW.RequireAuth(), usersHandler.ListUsers)
		users.GET("/:id", authMW.RequireAuth(), usersHandler.GetUserByID)
		users.PUT("/:id", authMW.RequireAuth(), middlewares.RequireJSON(), usersHandler.UpdateUser)
		users.DELETE("/:id", authMW.RequireAuth(), privileged, usersHandler.DeleteUser)
	}

	schools := v1.Group("/schools")
	{
		schools.GET("/all", schoolsHandler.ListSchools)
		schools.GET("/:id", schoolsHandler.GetSchoolByID)

		schools.POST("/create", authMW.RequireAuth(), privileged, middlewares.RequireJSON(), schoolsHandler.CreateSchool)
		schools.PUT("/:id", authMW.RequireAuth(), privileged, middlewares.RequireJSON(), schoolsHandler.UpdateSchool)
		schools.DELETE("/:id", authMW.RequireAuth(), privileged, schoolsHandler.DeleteSchool)
	}

	return r, nil
}
