package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/analystapp/backend/internal/providers/filesystem"
)

// ListDirectory lists a directory for the file explorer
func (h *Handlers) ListDirectory(c *gin.Context) {
	opts := filesystem.Options{
		Pattern: c.Query("pattern"),
	}

	if mime := c.Query("mime"); mime != "" {
		v, err := strconv.ParseBool(mime)
		if err != nil {
			badRequest(c, "mime must be a boolean")
			return
		}
		opts.Mime = v
	}

	if depth := c.Query("depth"); depth != "" {
		v, err := strconv.Atoi(depth)
		if err != nil {
			badRequest(c, "depth must be an integer")
			return
		}
		opts.Depth = v
	}

	listing, err := h.directories.List(c.Request.Context(), c.Query("path"), opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"path":      listing.Path,
		"items":     listing.Items,
		"truncated": listing.Truncated,
	})
}
