package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/portfolio-hub/pkg/auth"
	"github.com/khoahotran/portfolio-hub/pkg/logger"
)

type Handlers struct {
	Auth      *AuthHandler
	Portfolio *PortfolioHandler
	Feed      *FeedHandler
	// Upload is nil when no media host is configured.
	Upload *UploadHandler
}

func RegisterRoutes(router *gin.Engine, h Handlers, jwtSvc *auth.JWTService, log logger.Logger) {
	router.Use(ErrorMiddleware(log))
	authMiddleware := AuthMiddleware(jwtSvc, log)

	api := router.Group("/api")
	{
		admin := api.Group("/admin")
		{
			adminAuth := admin.Group("/auth")
			adminAuth.POST("/login", h.Auth.Login)

			adminPrivate := admin.Group("/")
			adminPrivate.Use(authMiddleware)
			{
				adminPrivate.PUT("/profile", h.Portfolio.UpdateProfile)
				adminPrivate.POST("/refresh", h.Portfolio.Refresh)

				items := adminPrivate.Group("/items")
				{
					items.POST("", h.Portfolio.CreateItem)
					items.PATCH("/:id", h.Portfolio.UpdateItem)
					items.DELETE("/:id", h.Portfolio.DeleteItem)
				}

				if h.Upload != nil {
					adminPrivate.POST("/uploads", h.Upload.UploadImage)
				}
			}
		}

		public := api.Group("/")
		{
			public.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "UP"}) })
			public.GET("/portfolio", h.Portfolio.GetPortfolio)
			public.GET("/feed.rss", h.Feed.GenerateRSS)
		}
	}
}
