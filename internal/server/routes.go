package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Upload page
	s.echo.GET("/", s.handleIndex)

	// Workspace API
	s.echo.GET("/api/images", s.handleListImages)
	s.echo.POST("/api/images", s.handleAddImages)
	s.echo.DELETE("/api/images", s.handleClearImages)
	s.echo.DELETE("/api/images/:index", s.handleRemoveImage)
	s.echo.POST("/api/images/reorder", s.handleReorderImages)
	s.echo.POST("/api/images/sort", s.handleSortImages)

	s.echo.GET("/api/layout", s.handleGetLayout)
	s.echo.PUT("/api/layout", s.handleSetLayout)

	s.echo.POST("/api/pdf", s.handleGeneratePDF)

	// Thumbnails
	s.echo.GET("/previews/:handle", s.handlePreview)

	// Conversion progress push
	s.echo.GET("/ws/progress", s.handleProgressSocket)
}
