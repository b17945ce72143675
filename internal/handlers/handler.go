package handlers

import (
	"net/http"
	"time"

	_ "auth_backend/internal/docs"
	"auth_backend/internal/logger"
	"auth_backend/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const (
	defaultCookieMaxAge    = 7 * 24 * time.Hour
	defaultMaxPictureBytes = 5 << 20
	credentialBodyLimit    = 64 << 10
	// room for the JSON envelope around a base64 picture
	pictureBodySlack = 16 << 10
)

// Options tune the HTTP surface.
type Options struct {
	// CookieMaxAge is the session cookie lifetime; it should match the token TTL.
	CookieMaxAge time.Duration
	// SecureCookies marks the session cookie Secure (production only).
	SecureCookies bool
	// AllowedOrigins enables credentialed CORS for these origins.
	AllowedOrigins []string
	// MaxPictureBytes is the largest decoded picture accepted; it sizes the
	// update-profile body limit.
	MaxPictureBytes int64
}

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
	opts     Options
}

// NewHandler constructs a new HTTP handler with dependencies. log may be nil.
func NewHandler(services *service.Service, log *logger.Logger, opts Options) *Handler {
	if opts.CookieMaxAge <= 0 {
		opts.CookieMaxAge = defaultCookieMaxAge
	}
	if opts.MaxPictureBytes <= 0 {
		opts.MaxPictureBytes = defaultMaxPictureBytes
	}
	return &Handler{services: services, log: log, opts: opts}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.requestLogger)

	if len(h.opts.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     h.opts.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", h.health)

	h.registerAuthRoutes(router)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", limitBody(credentialBodyLimit), h.signUp)
		auth.POST("/login", limitBody(credentialBodyLimit), h.login)
		auth.POST("/logout", h.logout)

		auth.PUT("/update-profile", h.sessionMiddleware, limitBody(h.pictureBodyLimit()), h.updateProfile)
		auth.GET("/check", h.sessionMiddleware, h.checkAuth)
	}
}

// pictureBodyLimit is the base64 size of the largest picture plus the envelope.
func (h *Handler) pictureBodyLimit() int64 {
	return (h.opts.MaxPictureBytes+2)/3*4 + pictureBodySlack
}

// limitBody caps how much of the request body a handler may read.
func limitBody(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

func (h *Handler) requestLogger(c *gin.Context) {
	start := time.Now()
	c.Next()
	if h.log == nil {
		return
	}
	h.log.Infow("http_request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"latency", time.Since(start),
		"ip", c.ClientIP(),
	)
}
