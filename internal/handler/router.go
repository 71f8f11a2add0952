package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/manualqa/internal/middleware"
)

type RouterDeps struct {
	Documents      *DocumentHandler
	Query          *QueryHandler
	Status         *StatusHandler
	QueryRateLimit time.Duration
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.GET("/health", deps.Status.Health)
	api.GET("/api-status", deps.Status.APIStatus)

	api.POST("/upload", deps.Documents.Upload)
	api.GET("/documents", deps.Documents.List)
	api.GET("/documents/:filename", deps.Documents.Get)
	api.DELETE("/documents/:filename", deps.Documents.Delete)
	api.DELETE("/documents", deps.Documents.Reset)

	api.POST("/query", middleware.RateLimit(deps.QueryRateLimit), deps.Query.Query)
}
