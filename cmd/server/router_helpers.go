package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tontine.backend/internal/interfaces/http/handlers"
	"tontine.backend/internal/interfaces/http/middleware"
	"tontine.backend/pkg/metrics"
)

const (
	serviceName    = "tontine-backend"
	serviceVersion = "0.1.0"
)

var corsAllowedHeaders = "Origin, Content-Type, Accept, Authorization, " +
	middleware.SessionIDHeader + ", " +
	middleware.RequestIDHeader + ", " +
	middleware.IdempotencyHeader + ", " +
	handlers.WebhookSecretHeader

func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", corsAllowedHeaders)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader+", X-Idempotency-Hit")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}

func registerHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": serviceName,
			"version": serviceVersion,
		})
	})
}

func registerMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
}
