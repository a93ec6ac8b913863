package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"docchat/src/core/assistant"
)

type postMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// PostMessage handles one chat message. Text starting with "/" is a command;
// anything else is routed as free text (usually a question).
func (h *Handler) PostMessage(c *gin.Context) {
	var req postMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	reply := h.controller.Handle(c.Request.Context(), userID(c), parseMessage(req.Text))
	sendJSON(c, http.StatusOK, reply)
}

// parseMessage turns raw message text into a controller event.
func parseMessage(text string) assistant.Event {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "/") {
		return assistant.Event{Kind: assistant.EventText, Text: trimmed}
	}

	fields := strings.SplitN(strings.TrimPrefix(trimmed, "/"), " ", 2)
	ev := assistant.Event{Kind: assistant.EventCommand, Command: fields[0]}
	if len(fields) > 1 {
		ev.Args = strings.TrimSpace(fields[1])
	}
	return ev
}

// PostFile handles a document upload as a multipart form with a "file" part.
func (h *Handler) PostFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}

	if fileHeader.Size > assistant.MaxUploadBytes {
		sendError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE",
			fmt.Errorf("file exceeds the %d byte limit", assistant.MaxUploadBytes))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		sendError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, assistant.MaxUploadBytes+1))
	if err != nil {
		sendError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	reply := h.controller.Handle(c.Request.Context(), userID(c), assistant.Event{
		Kind:     assistant.EventFile,
		Filename: fileHeader.Filename,
		Data:     data,
	})
	sendJSON(c, http.StatusOK, reply)
}
