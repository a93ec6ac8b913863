package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ListDocuments returns the registry entries for a user's indexed documents.
func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.indexer.ListDocuments(c.Request.Context(), userID(c))
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	sendJSON(c, http.StatusOK, gin.H{"documents": docs})
}
