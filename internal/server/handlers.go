package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GitVibranium03/railway-safety-ai-agent/internal/health"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/safety"
	"github.com/GitVibranium03/railway-safety-ai-agent/internal/validation"
)

// HealthResponse is the /health response body
type HealthResponse struct {
	Status    string          `json:"status"`
	Version   string          `json:"version"`
	Checks    []health.Status `json:"checks"`
	Timestamp string          `json:"timestamp"`
}

// assessHandler runs the risk assessment pipeline on a posted observation.
//
// Missing fields are not an error: the response is a clarification prompt
// with HTTP 200. Out-of-range fields return 400 with the violation message;
// classifier failures return 500.
func (s *Server) assessHandler(c *gin.Context) {
	var raw validation.RawObservation
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "Request body must be valid JSON",
		})
		return
	}

	result, err := s.pipeline.Assess(c.Request.Context(), raw)
	if err != nil {
		var rangeErr *safety.RangeError
		switch {
		case errors.As(err, &rangeErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "validation_error",
				"message": rangeErr.Error(),
			})
		case errors.Is(err, safety.ErrModelNotReady):
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "model_not_ready",
				"message": "Risk assessment is unavailable while the model is training",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "assessment_failed",
				"message": "Risk assessment failed",
			})
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) healthHandler(c *gin.Context) {
	healthy, checks := s.healthReg.CheckAll(c.Request.Context())

	status := "healthy"
	httpStatus := http.StatusOK
	if !healthy {
		status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, HealthResponse{
		Status:    status,
		Version:   Version,
		Checks:    checks,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) livenessHandler(c *gin.Context) {
	if !s.healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

func (s *Server) readinessHandler(c *gin.Context) {
	if !s.ready.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) infoHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "Railway Safety Agent",
		"description": "Risk assessment for railway operating conditions",
		"version":     Version,
		"strategy":    s.pipeline.Strategy(),
		"endpoints": gin.H{
			"assess":  "POST /assess-risk",
			"health":  "GET /health",
			"model":   "GET /model/info",
			"metrics": "GET /metrics",
		},
	})
}

// modelInfoHandler reports the active classifier configuration. For the
// statistical strategy this includes training state and feature importances.
func (s *Server) modelInfoHandler(c *gin.Context) {
	info := gin.H{
		"strategy": s.pipeline.Strategy(),
		"risk_thresholds": gin.H{
			"low":    s.cfg.ThresholdLow,
			"medium": s.cfg.ThresholdMedium,
		},
	}

	if s.mdl != nil {
		info["model_type"] = string(s.mdl.Type())
		info["trained"] = s.mdl.Trained()
		if s.mdl.Trained() {
			info["training_accuracy"] = s.mdl.TrainingAccuracy()
			imp := s.mdl.Importances()
			info["feature_importances"] = gin.H{
				"visibility": imp[0],
				"speed":      imp[1],
				"weather":    imp[2],
			}
		}
	}

	c.JSON(http.StatusOK, info)
}
