package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"farmershub/pkg/logger"
	"farmershub/pkg/metrics"
)

// SetupRoutes настраивает все маршруты приложения с использованием Gin
func SetupRoutes(authHandler *AuthHandler, reviewHandler *ReviewHandler, authMiddleware *AuthMiddleware) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("farmers-hub"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "farmers-hub",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Эндпоинты аутентификации
	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)

		protected := auth.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.GET("/me", authHandler.GetMe)
			protected.POST("/logout", authHandler.Logout)
		}
	}

	// Публичные чтения рейтингов и отзывов
	listings := router.Group("/listings/:listing_id")
	{
		listings.GET("/rating", reviewHandler.GetRating)
		listings.GET("/rating/display", reviewHandler.GetRatingDisplay)
		listings.GET("/reviews", reviewHandler.GetReviews)

		// Отзыв текущего пользователя требует аутентификации
		listings.GET("/reviews/me", authMiddleware.Authenticate(), reviewHandler.GetMyReview)
	}

	// Мутации отзывов - только для авторизованных пользователей
	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.POST("", reviewHandler.SubmitReview)
		reviews.PATCH("/:review_id", reviewHandler.UpdateReview)
		reviews.DELETE("/:review_id", reviewHandler.DeleteReview)
	}

	// Admin эндпоинты - только для администраторов
	admin := router.Group("/admin")
	admin.Use(authMiddleware.Authenticate())
	admin.Use(authMiddleware.RequireAdmin())
	{
		admin.GET("/reviews", reviewHandler.GetAllReviews)
		admin.DELETE("/reviews/:review_id", reviewHandler.AdminDeleteReview)
	}

	return router
}
