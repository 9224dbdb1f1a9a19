package router

import (
	"github.com/gin-gonic/gin"
	"github.com/nongdanviet/nongdanviet-backend/config"
	"github.com/nongdanviet/nongdanviet-backend/internal/app/controller"
	"github.com/nongdanviet/nongdanviet-backend/internal/middleware"
)

type Router struct {
	authController         *controller.AuthController
	verificationController *controller.VerificationController
	followController       *controller.FollowController
	salinityController     *controller.SalinityController
	analyticsController    *controller.AnalyticsController
	uploadController       *controller.UploadController
	contactController      *controller.ContactController
	websocketController    *controller.WebSocketController
	authMiddleware         *middleware.AuthMiddleware
	config                 *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	verificationController *controller.VerificationController,
	followController *controller.FollowController,
	salinityController *controller.SalinityController,
	analyticsController *controller.AnalyticsController,
	uploadController *controller.UploadController,
	contactController *controller.ContactController,
	websocketController *controller.WebSocketController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:         authController,
		verificationController: verificationController,
		followController:       followController,
		salinityController:     salinityController,
		analyticsController:    analyticsController,
		uploadController:       uploadController,
		contactController:      contactController,
		websocketController:    websocketController,
		authMiddleware:         authMiddleware,
		config:                 cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "NongDanViet API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/refresh", r.authController.RefreshToken)
			auth.POST("/logout", r.authMiddleware.OptionalAuthenticate(), r.authController.Logout)
			auth.POST("/forgot-password", r.authController.ForgotPassword)
			auth.POST("/reset-password", r.authController.ResetPassword)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetMe)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateMe)
		}

		verifications := v1.Group("/verifications", r.authMiddleware.Authenticate())
		{
			verifications.POST("", r.verificationController.SubmitDocument)
			verifications.GET("/me", r.verificationController.GetMyDocuments)
			verifications.GET("/:id", r.verificationController.GetDocument)
		}

		users := v1.Group("/users")
		{
			users.GET("/:id/followers", r.followController.GetFollowers)
			users.GET("/:id/following", r.followController.GetFollowing)
			users.GET("/:id/follow-stats", r.followController.GetStats)
			users.POST("/:id/follow", r.authMiddleware.Authenticate(), r.followController.Follow)
			users.DELETE("/:id/follow", r.authMiddleware.Authenticate(), r.followController.Unfollow)
		}

		salinity := v1.Group("/salinity")
		{
			salinity.GET("/stations", r.salinityController.ListStations)
			salinity.GET("/stations/:id/latest", r.salinityController.GetLatestReading)
			salinity.GET("/stations/:id/history", r.salinityController.GetHistory)
			salinity.GET("/alerts", r.salinityController.GetRecentAlerts)
		}

		uploads := v1.Group("/uploads", r.authMiddleware.Authenticate())
		{
			uploads.POST("/avatar", r.uploadController.PresignAvatarUpload)
		}

		v1.POST("/contact", r.contactController.SendMessage)

		// Cảnh báo thời gian thực (token qua query cho WebSocket)
		v1.GET("/ws/alerts", r.authMiddleware.Authenticate(), r.websocketController.Connect)
		v1.GET("/ws/status", r.authMiddleware.Authenticate(), r.websocketController.Status)

		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("admin"),
		)
		{
			admin.GET("/verifications", r.verificationController.ListDocuments)
			admin.POST("/verifications/:id/decide", r.verificationController.Decide)

			admin.POST("/salinity/stations", r.salinityController.CreateStation)
			admin.POST("/salinity/stations/:id/readings", r.salinityController.RecordReading)

			admin.GET("/analytics/verifications", r.analyticsController.GetVerificationStats)
			admin.GET("/analytics/salinity/:id/export", r.analyticsController.ExportSalinityHistory)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
