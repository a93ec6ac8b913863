package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ComponentStatus represents the status of a system component
type ComponentStatus string

const (
	StatusUp   ComponentStatus = "up"
	StatusDown ComponentStatus = "down"
)

// HealthStatus represents system health status
type HealthStatus struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
}

// CheckHealth probes each registered external dependency.
func (h *Handler) CheckHealth(c *gin.Context) {
	status := &HealthStatus{
		Status:     "healthy",
		Components: make(map[string]ComponentStatus, len(h.checkers)),
	}

	for name, check := range h.checkers {
		if err := check(c.Request.Context()); err != nil {
			status.Components[name] = StatusDown
			status.Status = "unhealthy"
		} else {
			status.Components[name] = StatusUp
		}
	}

	code := http.StatusOK
	if status.Status != "healthy" {
		code = http.StatusServiceUnavailable
	}

	sendJSON(c, code, status)
}
