package api

import (
	"github.com/gin-gonic/gin"
	"github.com/telun/repodoc/internal/api/handler"
	"github.com/telun/repodoc/internal/api/middleware"
	"github.com/telun/repodoc/internal/service"
	"github.com/telun/repodoc/internal/store"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	orchestrator *service.Orchestrator,
	jobStore store.Store,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	projectHandler := handler.NewProjectHandler(orchestrator, jobStore)

	r.GET("/health", healthHandler.Health)

	r.POST("/projects", projectHandler.Submit)
	r.GET("/projects", projectHandler.List)
	r.GET("/projects/:id", projectHandler.Get)
	r.GET("/projects/:id/progress", projectHandler.GetProgress)

	return r
}
