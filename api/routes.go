package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// registerRoutes registers all API routes
func (s *Server) registerRoutes() {
	s.router.GET("/health", s.healthCheck)
	if s.config.MetricsEnabled {
		s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/params", s.handleGetParams)

		pools := v1.Group("/pools")
		{
			pools.GET("", s.handleListPools)
			pools.GET("/:asset_a/:asset_b", s.handleGetPool)
			pools.GET("/:asset_a/:asset_b/share", s.handleGetShare)
			pools.GET("/:asset_a/:asset_b/compute-d", s.handleComputeD)
			pools.GET("/:asset_a/:asset_b/observe", s.handleObserve)
		}

		v1.GET("/simulate", s.handleSimulate)
		v1.GET("/simulate-route", s.handleSimulateRoute)
	}
}
