package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"ringslot/internal/auth"
	"ringslot/internal/booking"
	"ringslot/internal/client"
	"ringslot/internal/config"
	"ringslot/internal/email"
	"ringslot/internal/profile"
	"ringslot/internal/slot"
	"ringslot/internal/subscription"
	"ringslot/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
}

func New(db *sqlx.DB, cfg *config.Config, emailService *email.Service) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	sessions := auth.NewSessionRepository(db)

	userHandler := user.NewHandler(db)
	clientHandler := client.NewHandler(db)
	subscriptionHandler := subscription.NewHandler(db)
	slotHandler := slot.NewHandler(db)
	bookingHandler := booking.NewHandler(db, emailService)
	profileHandler := profile.NewHandler(db)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", userHandler.Register)
		authRoutes.POST("/login", userHandler.Login)
		authRoutes.POST("/verify", userHandler.Verify)
		authRoutes.POST("/logout", userHandler.Logout)
	}

	// Calendar reads are public, like the original storefront.
	router.GET("/slots", slotHandler.ListSlots)
	router.GET("/schedule", slotHandler.Schedule)

	authMiddleware := auth.Middleware(sessions)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/profile", profileHandler.Get)
		protected.GET("/bookings", bookingHandler.ListMine)
		protected.POST("/bookings", bookingHandler.Create)
		protected.POST("/slots/:slotID/book", bookingHandler.BookSlot)
		protected.POST("/bookings/:bookingID/cancel", bookingHandler.Cancel)
		protected.POST("/bookings/:bookingID/reschedule", bookingHandler.Reschedule)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole("admin"))
	{
		admin.GET("/clients", clientHandler.List)
		admin.POST("/clients", clientHandler.Create)
		admin.GET("/clients/:clientID", clientHandler.Get)
		admin.POST("/subscriptions", subscriptionHandler.Create)
		admin.GET("/users/:userID/subscriptions", subscriptionHandler.ListByUser)
		admin.GET("/users/:userID/bookings", bookingHandler.ListByUser)
		admin.GET("/bookings/upcoming", bookingHandler.ListUpcoming)
		admin.POST("/slots", slotHandler.CreateSlot)
		admin.POST("/slots/:slotID/block", slotHandler.BlockSlot)
		admin.POST("/slots/:slotID/unblock", slotHandler.UnblockSlot)
		admin.GET("/analytics/bookings", bookingHandler.Analytics)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	return &Server{
		router: router,
		db:     db,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine, used by tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Auth-Token, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
