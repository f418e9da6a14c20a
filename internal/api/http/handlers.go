package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/analystapp/backend/internal/providers/filesystem"
	"github.com/analystapp/backend/internal/providers/system"
	"github.com/analystapp/backend/internal/providers/terminal"
)

// Version is reported by the banner
const Version = "0.1.0"

// Sessions is the session manager as seen by the REST handlers.
type Sessions interface {
	Create(ctx context.Context, workingDir string) (*terminal.Handle, error)
	Write(terminalID string, data []byte) error
	Destroy(terminalID string) error
	Resize(terminalID string, cols, rows int) error
	Get(terminalID string) (*terminal.SessionInfo, error)
	List() []terminal.SessionInfo
	Count() int
	Available() error
}

// Directories lists directories
type Directories interface {
	List(ctx context.Context, dir string, opts filesystem.Options) (*filesystem.Listing, error)
}

// SystemInfo reports host information
type SystemInfo interface {
	Info(ctx context.Context) *system.Info
}

// Handlers contains all HTTP handlers
type Handlers struct {
	sessions    Sessions
	directories Directories
	system      SystemInfo
	logger      *zap.Logger
}

// NewHandlers creates a new handler set
func NewHandlers(sessions Sessions, directories Directories, sys SystemInfo, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		sessions:    sessions,
		directories: directories,
		system:      sys,
		logger:      logger,
	}
}

// Register mounts every route on r
func (h *Handlers) Register(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	terminals := r.Group("/terminals")
	terminals.GET("", h.ListTerminals)
	terminals.POST("", requireJSON, h.CreateTerminal)
	terminals.GET("/:id", h.GetTerminal)
	terminals.POST("/:id/input", requireJSON, h.WriteTerminal)
	terminals.POST("/:id/resize", requireJSON, h.ResizeTerminal)
	terminals.DELETE("/:id", h.DestroyTerminal)

	r.GET("/fs/list", h.ListDirectory)
	r.GET("/system/info", h.SystemInfo)
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "Analyst Terminal Service",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	pty := gin.H{"available": true}
	if err := h.sessions.Available(); err != nil {
		pty = gin.H{"available": false, "error": err.Error()}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"terminals": h.sessions.Count(),
		"pty":       pty,
	})
}

// SystemInfo returns host information
func (h *Handlers) SystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.system.Info(c.Request.Context()))
}

// fail writes a structured failure. The status follows the error code.
func (h *Handlers) fail(c *gin.Context, err error) {
	code := errorCode(err)
	status := statusFor(code)
	if status >= http.StatusInternalServerError && code != terminal.CodeNotAvailable {
		h.logger.Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}

	body := gin.H{
		"success": false,
		"error":   err.Error(),
	}
	if code != "" {
		body["code"] = code
	}
	c.JSON(status, body)
}

// requireJSON refuses request bodies that are not application/json.
func requireJSON(c *gin.Context) {
	if c.Request.ContentLength != 0 && c.ContentType() != binding.MIMEJSON {
		c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
			"success": false,
			"error":   "request body must be application/json",
		})
		return
	}
	c.Next()
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error":   msg,
	})
}

func errorCode(err error) string {
	if code := terminal.CodeOf(err); code != "" {
		return code
	}
	var ferr *filesystem.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return ""
}

func statusFor(code string) int {
	switch code {
	case terminal.CodeNotAvailable:
		return http.StatusServiceUnavailable
	case terminal.CodeNotFound:
		return http.StatusNotFound
	case terminal.CodeCreate, terminal.CodeInvalidSize, filesystem.CodeReadError, filesystem.CodeInvalidPattern:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
