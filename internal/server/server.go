package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/heirloomlabs/heirloom/internal/config"
	entitlementdomain "github.com/heirloomlabs/heirloom/internal/entitlement/domain"
	"github.com/heirloomlabs/heirloom/internal/identity"
	obstracing "github.com/heirloomlabs/heirloom/internal/observability/tracing"
	"github.com/heirloomlabs/heirloom/internal/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(log))
	r.Use(obstracing.GinMiddleware())
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	log            *zap.Logger
	entitlementSvc entitlementdomain.Service
	identities     identity.Provider
	acceptLimiter  *ratelimit.AcceptLimiter
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	Log            *zap.Logger
	EntitlementSvc entitlementdomain.Service
	Identities     identity.Provider
	AcceptLimiter  *ratelimit.AcceptLimiter `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		log:            p.Log.Named("http.server"),
		entitlementSvc: p.EntitlementSvc,
		identities:     p.Identities,
		acceptLimiter:  p.AcceptLimiter,
	}

	svc.registerAPIRoutes()

	return svc
}

func (s *Server) registerAPIRoutes() {
	v1 := s.engine.Group("/v1")
	v1.Use(s.AuthRequired())

	v1.POST("/projects", s.CreateProject)
	v1.GET("/projects/:id/permissions", s.GetProjectPermissions)
	v1.GET("/projects/:id/invitations", s.ListProjectInvitations)

	v1.POST("/invitations", s.CreateInvitation)
	v1.POST("/invitations/accept", s.AcceptInvitation)
	v1.POST("/invitations/decline", s.DeclineInvitation)
	v1.POST("/invitations/:id/revoke", s.RevokeInvitation)

	v1.GET("/wallet", s.GetWallet)
	v1.GET("/wallet/transactions", s.ListWalletTransactions)
}
