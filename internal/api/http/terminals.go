package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// CreateTerminalRequest is the body of POST /terminals
type CreateTerminalRequest struct {
	Cwd string `json:"cwd"`
}

// WriteTerminalRequest is the body of POST /terminals/:id/input
type WriteTerminalRequest struct {
	Data string `json:"data"`
}

// ResizeTerminalRequest is the body of POST /terminals/:id/resize
type ResizeTerminalRequest struct {
	Cols int `json:"cols" binding:"required"`
	Rows int `json:"rows" binding:"required"`
}

// ListTerminals lists all live sessions
func (h *Handlers) ListTerminals(c *gin.Context) {
	terminals := h.sessions.List()
	c.JSON(http.StatusOK, gin.H{
		"terminals": terminals,
		"count":     len(terminals),
	})
}

// GetTerminal returns one session
func (h *Handlers) GetTerminal(c *gin.Context) {
	info, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"terminal": info,
	})
}

// CreateTerminal spawns a shell. The body is optional.
func (h *Handlers) CreateTerminal(c *gin.Context) {
	var req CreateTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	handle, err := h.sessions.Create(c.Request.Context(), req.Cwd)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"terminalId":       handle.TerminalID,
		"workingDirectory": handle.WorkingDirectory,
	})
}

// WriteTerminal forwards input to a shell
func (h *Handlers) WriteTerminal(c *gin.Context) {
	var req WriteTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.sessions.Write(c.Param("id"), []byte(req.Data)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResizeTerminal changes a shell's window size
func (h *Handlers) ResizeTerminal(c *gin.Context) {
	var req ResizeTerminalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := h.sessions.Resize(c.Param("id"), req.Cols, req.Rows); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DestroyTerminal terminates a shell
func (h *Handlers) DestroyTerminal(c *gin.Context) {
	if err := h.sessions.Destroy(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
