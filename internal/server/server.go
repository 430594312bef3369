package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/ZanzyTHEbar/teamconstructor/internal/cache"
	"github.com/ZanzyTHEbar/teamconstructor/internal/database"
	apperrors "github.com/ZanzyTHEbar/teamconstructor/internal/errors"
	"github.com/ZanzyTHEbar/teamconstructor/internal/journal"
	"github.com/ZanzyTHEbar/teamconstructor/internal/middleware"
	"github.com/ZanzyTHEbar/teamconstructor/internal/monitoring"
	"github.com/ZanzyTHEbar/teamconstructor/internal/ratelimit"
	"github.com/ZanzyTHEbar/teamconstructor/internal/security"
)

const version = "1.0.0"

// cachedRoutes are deterministic and do not touch stored results
var cachedRoutes = []string{
	"POST /v1/results",
	"POST /v1/pair",
	"POST /v1/encode",
}

// Options tunes scoring
type Options struct {
	TestThreshold float64
	Diff          float64
}

// Deps are the collaborators the HTTP layer is wired to
type Deps struct {
	DB       *database.DB
	Results  *database.ResultService
	Journal  *journal.Journal
	Cache    *cache.Cache
	Limiter  *ratelimit.RateLimiter
	Security *security.SecurityMiddleware
	Auth     *security.AdminAuth
	Metrics  *monitoring.Metrics
	Logger   *monitoring.Logger

	Compression *middleware.CompressionMiddleware
}

// Server exposes the scoring engine over JSON
type Server struct {
	opts     Options
	db       *database.DB
	results  *database.ResultService
	journal  *journal.Journal
	cache    *cache.Cache
	limiter  *ratelimit.RateLimiter
	security *security.SecurityMiddleware
	auth     *security.AdminAuth
	metrics  *monitoring.Metrics
	logger   *monitoring.Logger
	compress *middleware.CompressionMiddleware
}

// New creates the server
func New(opts Options, deps Deps) *Server {
	if deps.Metrics == nil {
		deps.Metrics = monitoring.NewMetrics()
	}
	if deps.Logger == nil {
		deps.Logger = monitoring.NewLogger()
	}
	if deps.Security == nil {
		deps.Security = security.NewSecurityMiddleware(nil)
	}
	if deps.Cache == nil {
		deps.Cache = cache.NewCache(0)
	}
	if deps.Compression == nil {
		deps.Compression = middleware.NewCompressionMiddleware(middleware.DefaultCompressionConfig())
	}

	return &Server{
		opts:     opts,
		db:       deps.DB,
		results:  deps.Results,
		journal:  deps.Journal,
		cache:    deps.Cache,
		limiter:  deps.Limiter,
		security: deps.Security,
		auth:     deps.Auth,
		metrics:  deps.Metrics,
		logger:   deps.Logger,
		compress: deps.Compression,
	}
}

// Router builds the gin engine with every route and middleware
func (s *Server) Router() *gin.Engine {
	r := gin.New()

	r.Use(monitoring.MonitoringMiddleware(s.metrics, s.logger))
	r.Use(monitoring.SecurityMonitoringMiddleware(s.logger))

	// recovery sits outside the error renderer so a failed render still gets a 500
	r.Use(apperrors.RecoveryHandler())
	r.Use(apperrors.ErrorHandler())
	r.Use(s.compress.Handler())

	r.Use(s.security.CORSConfig())
	r.Use(s.security.SecurityHeadersMiddleware())
	r.Use(s.security.RequestTimeout)
	r.Use(s.security.LimitBody)
	r.Use(s.security.ValidateContentType)
	if s.limiter != nil {
		r.Use(s.limiter.IPRateLimitMiddleware())
	}

	r.Use(s.cache.Middleware(s.metrics, cachedRoutes...))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", s.handleMetrics)
	r.GET("/cache/stats", s.handleCacheStats)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/v1")
	{
		v1.POST("/answers", s.handleAnswers)
		v1.POST("/results", s.handleResults)
		v1.GET("/decode", s.handleDecode)
		v1.POST("/encode", s.handleEncode)
		v1.POST("/pair", s.handlePair)
		v1.POST("/team", s.handleTeam)

		submit := []gin.HandlerFunc{s.handleSubmit}
		if s.limiter != nil {
			submit = append([]gin.HandlerFunc{s.limiter.SubmitRateLimitMiddleware()}, submit...)
		}
		v1.POST("/submit", submit...)
	}

	if s.limiter != nil {
		r.GET("/ratelimit", s.limiter.HandleRateLimitStatus())
	}

	if s.auth != nil {
		r.POST("/admin/login", s.auth.HandleLogin())

		admin := r.Group("/admin", s.auth.RequireAdmin())
		{
			admin.GET("/results", s.handleAdminResults)
			admin.GET("/results/export", s.handleAdminExport)
			admin.GET("/results/:id", s.handleAdminResult)
			admin.DELETE("/results/:id", s.handleAdminDelete)
			admin.GET("/journal", s.handleAdminJournal)

			if s.limiter != nil {
				admin.GET("/ratelimit", s.limiter.HandleAdminRateLimits())
				admin.DELETE("/ratelimit/:ip", s.limiter.HandleAdminInvalidateIP())
			}
		}
	}

	return r
}
