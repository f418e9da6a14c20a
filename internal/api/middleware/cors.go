package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig defines CORS configuration options.
type CORSConfig struct {
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	AllowCredentials bool
	MaxAge           time.Duration
}

// DefaultCORSConfig returns the configuration used by the terminal view,
// which is served from a different local origin than the API.
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: append([]string(nil), DefaultAllowedOrigins...),
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Content-Length",
			"Accept",
			"Origin",
			"Cache-Control",
			"X-Requested-With",
			RequestIDHeader,
		},
		ExposeHeaders:    []string{RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
}

// CORS creates a CORS middleware with the provided configuration.
// AllowOrigins uses the OriginPolicy rule syntax; requests from other
// origins are answered with 403. It panics on a malformed rule, as
// cors.New does on an invalid configuration.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	policy, err := NewOriginPolicy(cfg.AllowOrigins)
	if err != nil {
		panic(err)
	}

	return cors.New(cors.Config{
		AllowOriginFunc:  policy.Allowed,
		AllowMethods:     cfg.AllowMethods,
		AllowHeaders:     cfg.AllowHeaders,
		ExposeHeaders:    cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		AllowWebSockets:  true,
		MaxAge:           cfg.MaxAge,
	})
}
