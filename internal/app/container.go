package app

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campusbook/campus-booking-backend/internal/api"
	"github.com/campusbook/campus-booking-backend/internal/auth"
	"github.com/campusbook/campus-booking-backend/internal/booking"
	"github.com/campusbook/campus-booking-backend/internal/notification"
	"github.com/campusbook/campus-booking-backend/internal/resource"
	"github.com/campusbook/campus-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	CancelWindow    time.Duration
	DefaultLocation *time.Location

	RateLimitPerSec float64
	RateLimitBurst  int
	CacheTTL        time.Duration

	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
	PushWorkers     int
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager

	// PushPool is nil when web push is not configured.
	PushPool *notification.WorkerPool
}

// NewContainer initializes all modules and returns the container.
func NewContainer(cfg Config) *Container {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Resource Module
	resRepo := resource.NewPgxRepository(cfg.DBPool)
	resService := resource.NewService(resRepo)

	// Notification Module
	notifRepo := notification.NewPgxRepository(cfg.DBPool)
	var pushPool *notification.WorkerPool
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushPool = notification.NewWorkerPool(cfg.PushWorkers, notifRepo, &webpush.Options{
			Subscriber:      cfg.VAPIDSubject,
			VAPIDPublicKey:  cfg.VAPIDPublicKey,
			VAPIDPrivateKey: cfg.VAPIDPrivateKey,
			TTL:             3600,
		})
	}
	notifService := notification.NewService(notifRepo, pushPool)

	// Booking Module
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, resService, notifService, cfg.CancelWindow, cfg.DefaultLocation)

	// API Router Config
	routerParams := api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		RateLimitPerSec: cfg.RateLimitPerSec,
		RateLimitBurst:  cfg.RateLimitBurst,
		CacheTTL:        cfg.CacheTTL,
		DefaultLocation: cfg.DefaultLocation,
		UserService:     userService,
		ResService:      resService,
		BookingService:  bookingService,
		NotifService:    notifService,
		JWTManager:      jwtManager,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
	}

	// Router
	router := api.NewRouter(routerParams)

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
		PushPool:   pushPool,
	}
}
