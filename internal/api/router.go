package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/samirwankhede/pagila-reports/internal/api/reports"
	"github.com/samirwankhede/pagila-reports/web"
)

// Pinger checks database reachability; *store.DB implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterRoutes wires all HTTP routes.
func RegisterRoutes(r *gin.Engine, log *zap.Logger, svc reports.Renderer, db Pinger) error {
	tmpl, err := web.Templates()
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	r.GET("/v1", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        "Pagila DWH Reporting",
			"description": "Rental reports by film category and over time from vw_rental_analysis.",
			"version":     "1.0.0",
			"docs":        "/docs",
			"endpoints":   []string{"/", "/v1/reports/category", "/v1/reports/trend", "/v1/health", "/v1/ready", "/metrics"},
		})
	})
	r.GET("/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/v1/ready", func(c *gin.Context) {
		if err := db.Ping(c.Request.Context()); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	RegisterDocs(r)
	reports.NewReportsHandler(log, svc).Register(r)
	return nil
}
