package router

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/clinisys/backoffice/internal/handler"
	auditHandler "github.com/clinisys/backoffice/internal/handler/audit"
	authHandler "github.com/clinisys/backoffice/internal/handler/auth"
	exportHandler "github.com/clinisys/backoffice/internal/handler/export"
	pseudonymHandler "github.com/clinisys/backoffice/internal/handler/pseudonym"
	recordsHandler "github.com/clinisys/backoffice/internal/handler/records"
	staffHandler "github.com/clinisys/backoffice/internal/handler/staff"
	"github.com/clinisys/backoffice/internal/middleware"
)

type Router struct {
	engine *gin.Engine
}

type Handlers struct {
	Auth      *authHandler.Handler
	Records   *recordsHandler.Handler
	Pseudonym *pseudonymHandler.Handler
	Staff     *staffHandler.Handler
	Export    *exportHandler.Handler
	Audit     *auditHandler.Handler
}

func New(db *sqlx.DB, authMW *middleware.AuthMiddleware, h Handlers, loginRPS rate.Limit) *Router {
	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Recovery(),
	)

	engine.GET("/health", handler.Health(db))
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := engine.Group("/api/v1")

	v1.POST("/auth/login", middleware.RateLimit(loginRPS, 5), h.Auth.Login)

	authed := v1.Group("", authMW.Authenticate())
	{
		authed.POST("/auth/logout", h.Auth.Logout)

		authed.GET("/tables", h.Records.Tables)
		authed.GET("/tables/:entity", h.Records.List)
		authed.GET("/tables/:entity/:id", h.Records.Get)
		authed.POST("/tables/:entity", h.Records.Create)
		authed.PATCH("/tables/:entity/:id", h.Records.Update)
		authed.DELETE("/tables/:entity/:id", h.Records.Delete)
	}

	admin := authed.Group("", authMW.RequireAdmin())
	{
		admin.POST("/staff", h.Staff.CreateEmployee)
		admin.GET("/export", h.Export.Download)
		admin.GET("/audit", h.Audit.List)

		admin.POST("/patients/:id/alias", h.Pseudonym.CreateAlias)
		admin.GET("/aliases/:id/patient", h.Pseudonym.ResolvePatient)
		admin.POST("/keys/rotate", h.Pseudonym.RotateKey)
		admin.DELETE("/keys/:id", h.Pseudonym.PurgeKey)
	}

	return &Router{engine: engine}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
