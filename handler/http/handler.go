package http

import (
	"context"

	"github.com/gin-gonic/gin"

	"docchat/src/core/assistant"
)

// ComponentChecker reports whether one external dependency is reachable.
type ComponentChecker func(ctx context.Context) error

type Handler struct {
	controller *assistant.Controller
	indexer    *assistant.IndexerService
	checkers   map[string]ComponentChecker
}

func NewHandler(controller *assistant.Controller, indexer *assistant.IndexerService, checkers map[string]ComponentChecker) *Handler {
	return &Handler{
		controller: controller,
		indexer:    indexer,
		checkers:   checkers,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")

	// Chat routes
	api.POST("/users/:userId/messages", h.PostMessage)
	api.POST("/users/:userId/files", h.PostFile)

	// Document routes
	api.GET("/users/:userId/documents", h.ListDocuments)

	// System routes
	api.GET("/health", h.CheckHealth)
}

// Common error response structure
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func sendError(c *gin.Context, status int, code string, err error) {
	c.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}

func sendJSON(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

func userID(c *gin.Context) string {
	return c.Param("userId")
}
