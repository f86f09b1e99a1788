package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/clinisys/backoffice/internal/config"
	"github.com/clinisys/backoffice/internal/gateway"
	auditHandler "github.com/clinisys/backoffice/internal/handler/audit"
	authHandler "github.com/clinisys/backoffice/internal/handler/auth"
	exportHandler "github.com/clinisys/backoffice/internal/handler/export"
	pseudonymHandler "github.com/clinisys/backoffice/internal/handler/pseudonym"
	recordsHandler "github.com/clinisys/backoffice/internal/handler/records"
	staffHandler "github.com/clinisys/backoffice/internal/handler/staff"
	"github.com/clinisys/backoffice/internal/middleware"
	"github.com/clinisys/backoffice/internal/policy"
	"github.com/clinisys/backoffice/internal/pseudonym"
	"github.com/clinisys/backoffice/internal/registry"
	"github.com/clinisys/backoffice/internal/repository/postgres"
	"github.com/clinisys/backoffice/internal/router"
	auditService "github.com/clinisys/backoffice/internal/service/audit"
	authService "github.com/clinisys/backoffice/internal/service/auth"
	exportService "github.com/clinisys/backoffice/internal/service/export"
	staffService "github.com/clinisys/backoffice/internal/service/staff"
	"github.com/clinisys/backoffice/pkg/logger"
	"github.com/clinisys/backoffice/pkg/metrics"
	"github.com/clinisys/backoffice/pkg/security"
)

func main() {
	log := logger.NewLogger(nil).WithComponent("api")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	if err := postgres.Migrate(db); err != nil {
		log.Fatal(err, "failed to apply migrations")
	}

	m := metrics.NewMetrics("backoffice", "api")

	// Registry and policy: static metadata, built once.
	reg := registry.Clinical()
	engine := policy.NewEngine(reg)

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	keyRepo := postgres.NewKeyRepository(db)
	aliasRepo := postgres.NewAliasRepository(db)
	auditRepo := postgres.NewAuditRepository(db)

	// Services
	hasher := security.NewBcryptHasher(0)
	auditor := auditService.NewService(auditRepo)
	authSvc := authService.NewService(userRepo, hasher, authService.Config{
		Secret:      cfg.JWT.Secret,
		ExpiryHours: cfg.JWT.ExpiryHours,
	}, m)
	staffSvc := staffService.NewService(userRepo, hasher, auditor)
	pseudonymSvc := pseudonym.NewService(keyRepo, aliasRepo, auditor, m)

	gw := gateway.New(reg, postgres.NewRoleBinder(db), auditor, m)
	exportSvc := exportService.NewService(gw, m)

	ctx := context.Background()
	if err := staffSvc.EnsureBootstrapAdmin(ctx, cfg.Bootstrap.AdminEmail, cfg.Bootstrap.AdminPassword); err != nil {
		log.Fatal(err, "failed to bootstrap admin account")
	}

	authMW := middleware.NewAuthMiddleware(authSvc, engine)

	r := router.New(db, authMW, router.Handlers{
		Auth:      authHandler.NewHandler(authSvc),
		Records:   recordsHandler.NewHandler(reg, gw),
		Pseudonym: pseudonymHandler.NewHandler(pseudonymSvc),
		Staff:     staffHandler.NewHandler(staffSvc),
		Export:    exportHandler.NewHandler(exportSvc),
		Audit:     auditHandler.NewHandler(auditor),
	}, rate.Limit(1))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		log.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(err, "forced shutdown")
	}
}
