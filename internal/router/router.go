package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/avdeeva/beautybook/internal/handler/prometheus"
	"github.com/avdeeva/beautybook/internal/middleware"
	"github.com/avdeeva/beautybook/pkg/logger"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
}

// Router assembles the public API and the token-protected admin panel.
type Router struct {
	engine   *gin.Engine
	auth     *middleware.AuthMiddleware
	healthH  Handler
	authH    Handler
	slotH    Handler
	bookingH Handler
	adminH   Handler
	promH    *prometheus.Handler
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	healthH Handler,
	authH Handler,
	slotH Handler,
	bookingH Handler,
	adminH Handler,
	promH *prometheus.Handler,
	l *logger.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(l),
		middleware.ErrorHandler(),
		promH.Middleware(),
	)

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		Rate:  config.RateLimit,
		Burst: config.RateBurst,
	})
	engine.Use(rateLimiter.RateLimit())

	return &Router{
		engine:   engine,
		auth:     auth,
		healthH:  healthH,
		authH:    authH,
		slotH:    slotH,
		bookingH: bookingH,
		adminH:   adminH,
		promH:    promH,
	}
}

func (r *Router) Setup() {
	r.healthH.RegisterRoutes(r.engine.Group(""))
	r.engine.GET("/metrics", r.promH.Handler())

	api := r.engine.Group("/api/v1")
	r.authH.RegisterRoutes(api)
	r.slotH.RegisterRoutes(api)
	r.bookingH.RegisterRoutes(api)

	admin := api.Group("/admin")
	admin.Use(r.auth.Authenticate())
	r.adminH.RegisterRoutes(admin)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
