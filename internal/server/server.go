// Package server builds the domain services and the HTTP router over one database.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/gestor/internal/accounts"
	"github.com/jimdaga/gestor/internal/database"
	"github.com/jimdaga/gestor/internal/health"
	"github.com/jimdaga/gestor/internal/httpx"
	"github.com/jimdaga/gestor/internal/kpis"
	"github.com/jimdaga/gestor/internal/notifications"
	"github.com/jimdaga/gestor/internal/projects"
	"github.com/jimdaga/gestor/internal/tasks"
	"gorm.io/gorm"
)

// Services bundles the domain services
type Services struct {
	Accounts      *accounts.Service
	Projects      *projects.Service
	Tasks         *tasks.Service
	KPIs          *kpis.Service
	Notifications *notifications.Service
}

// Options customizes how notifications leave the request path
type Options struct {
	// Events receives every created notification. May be nil.
	Events notifications.EventPublisher
	// WrapDispatcher replaces inline notification delivery, for example
	// with a queue that falls back to inline. May be nil.
	WrapDispatcher func(inline notifications.Dispatcher) notifications.Dispatcher
}

// NewServices wires every service over db
func NewServices(db *gorm.DB, logger *slog.Logger, opts Options) (*Services, error) {
	if logger == nil {
		logger = slog.Default()
	}

	userSvc, err := accounts.NewService(accounts.NewRepository(db))
	if err != nil {
		return nil, err
	}
	notificationSvc := notifications.NewService(notifications.NewRepository(db), opts.Events, logger)

	var dispatcher notifications.Dispatcher = notifications.NewInlineDispatcher(notificationSvc, logger)
	if opts.WrapDispatcher != nil {
		dispatcher = opts.WrapDispatcher(dispatcher)
	}

	projectSvc := projects.NewService(projects.NewRepository(db), userSvc)
	return &Services{
		Accounts:      userSvc,
		Projects:      projectSvc,
		Tasks:         tasks.NewService(tasks.NewRepository(db), userSvc, projectSvc, dispatcher),
		KPIs:          kpis.NewService(kpis.NewRepository(db), projectSvc, dispatcher),
		Notifications: notificationSvc,
	}, nil
}

// NewRouter mounts every route group on a fresh gin engine
func NewRouter(db *gorm.DB, svcs *Services, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpx.RequestLogger(logger))

	r.GET("/health", gin.WrapF(health.Handler))
	r.GET("/notifications/health", gin.WrapF(health.Handler))
	r.GET("/healthz", gin.WrapF(health.Readiness(func(ctx context.Context) error {
		return database.Ping(ctx, db)
	})))

	accounts.RegisterRoutes(r, svcs.Accounts)
	projects.RegisterRoutes(r, svcs.Projects)
	tasks.RegisterRoutes(r, svcs.Tasks)
	kpis.RegisterRoutes(r, svcs.KPIs)
	notifications.RegisterRoutes(r, svcs.Notifications)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, httpx.ErrorResponse{Error: "No encontrado"})
	})
	return r
}
