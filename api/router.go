package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/awquery/api/handlers"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/validation"
)

const mcpPath = "/mcp"

func setupRoutes(router *gin.Engine, logger logger.Logger, service handlers.Service, validator *validation.Validator, mcpHandler http.Handler) {
	router.GET("/health", health())

	router.Any(mcpPath, gin.WrapH(mcpHandler))

	handlers.SetupSearch(router, logger, service, validator)
	handlers.SetupFetch(router, logger, service)

}

func health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	}
}

func newRouter(debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.UseRawPath = true
	router.Use(_CORSMiddleware())
	router.Use(gin.Recovery())

	return router
}
