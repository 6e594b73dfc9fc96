package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/campusbook/campus-booking-backend/internal/auth"
	"github.com/campusbook/campus-booking-backend/internal/booking"
	bookingHttp "github.com/campusbook/campus-booking-backend/internal/booking/http"
	"github.com/campusbook/campus-booking-backend/internal/notification"
	notifHttp "github.com/campusbook/campus-booking-backend/internal/notification/http"
	"github.com/campusbook/campus-booking-backend/internal/pkg/mw"
	"github.com/campusbook/campus-booking-backend/internal/resource"
	resHttp "github.com/campusbook/campus-booking-backend/internal/resource/http"
	"github.com/campusbook/campus-booking-backend/internal/user"
	userHttp "github.com/campusbook/campus-booking-backend/internal/user/http"
)

// Config holds everything the router needs to assemble the API surface.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration
	DefaultLocation *time.Location

	UserService    user.Service
	ResService     resource.Service
	BookingService booking.Service
	NotifService   notification.Service
	JWTManager     *auth.JWTManager
	VAPIDPublicKey string
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth, rate
// limiting) and registering routes for various modules.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{
			"http://localhost:5173", // frontend dev server
			"http://localhost:8081", // Swagger
		}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	if cfg.RateLimitPerSec > 0 {
		r.Use(mw.RateLimit(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the authenticated user is an admin.
	adminMiddleware := RequireAdmin(cfg.UserService)

	// Response cache for the public resource catalog.
	var cacheMiddleware gin.HandlerFunc
	if cfg.CacheTTL > 0 {
		store := gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL)
		cacheMiddleware = mw.Cache(store, cfg.CacheTTL)
	}

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	resHandler := resHttp.NewHandler(cfg.ResService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService, cfg.DefaultLocation)
	notifHandler := notifHttp.NewHandler(cfg.NotifService, cfg.VAPIDPublicKey)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware, adminMiddleware)
		resHttp.RegisterRoutes(v1, resHandler, authMiddleware, adminMiddleware, cacheMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, adminMiddleware)
		notifHttp.RegisterRoutes(v1, notifHandler, authMiddleware)
	}

	return r
}
