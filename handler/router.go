package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the API routes.
func NewRouter(h *DocumentHandler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Logger(logger))

	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "OCR Green Finance",
		})
	})

	api := router.Group("/api/v1")
	{
		records := api.Group("/records")
		{
			records.POST("", h.CreateRecord)
			records.POST("/batch", h.CreateBatch)
			records.POST("/file", h.CreateFromFile)
		}
		api.POST("/metrics", h.ComputeMetrics)
		api.GET("/fields", h.ListFields)
	}

	return router
}
