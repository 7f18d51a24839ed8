package routes

import (
	"github.com/evacurves/storefront-backend-go/handlers"
	"github.com/evacurves/storefront-backend-go/metrics"
	customMiddleware "github.com/evacurves/storefront-backend-go/middleware"
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers the REST surface. m may be nil, in which case
// /metrics is not served.
func SetupRoutes(e *echo.Echo, h *handlers.Handler, auth customMiddleware.Authenticator, m *metrics.Metrics) {
	authenticated := customMiddleware.Authenticated(auth)
	admin := []echo.MiddlewareFunc{authenticated, customMiddleware.AdminOnly}

	e.GET("/health", h.Health)
	if m != nil {
		e.GET("/metrics", m.Handler())
	}

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.Me, authenticated)

	// User routes
	users := api.Group("/users", authenticated)
	users.PATCH("/profile", h.UpdateProfile)
	users.PATCH("/password", h.ChangePassword)
	users.PATCH("/notifications", h.UpdateNotifications)
	users.DELETE("/account", h.DeleteAccount)

	// Product routes
	products := api.Group("/products")
	products.GET("", h.GetProducts)
	products.GET("/search", h.SearchProducts)
	products.GET("/reviews/all", h.GetAllReviews, admin...)
	products.PUT("/featured/reorder", h.ReorderFeaturedProducts, admin...)
	products.GET("/:id", h.GetProduct)
	products.POST("", h.CreateProduct, admin...)
	products.PUT("/:id", h.UpdateProduct, admin...)
	products.DELETE("/:id", h.DeleteProduct, admin...)
	products.PUT("/:id/related", h.UpdateRelatedProducts, admin...)

	// Review routes
	products.POST("/:id/reviews", h.AddReview, authenticated)
	products.POST("/:id/reviews/:reviewId/helpful", h.MarkReviewHelpful, authenticated)
	products.POST("/:id/reviews/:reviewId/report", h.ReportReview, authenticated)
	products.PUT("/:id/reviews/:reviewId/verify", h.VerifyReview, admin...)
	products.DELETE("/:id/reviews/:reviewId", h.DeleteReview, admin...)

	// Order routes; checkout is open to guests
	orders := api.Group("/orders")
	orders.POST("", h.CreateOrder, customMiddleware.OptionalAuth(auth))
	orders.GET("/my-orders", h.GetMyOrders, authenticated)
	orders.GET("/all", h.GetAllOrders, admin...)
	orders.GET("/:id", h.GetOrder, authenticated)
	orders.PUT("/:id/status", h.UpdateOrderStatus, admin...)

	// Category routes
	categories := api.Group("/categories")
	categories.GET("", h.GetCategories)
	categories.GET("/:id", h.GetCategory)
	categories.POST("", h.CreateCategory, admin...)
	categories.PUT("/reorder", h.ReorderCategories, admin...)
	categories.PUT("/:id", h.UpdateCategory, admin...)
	categories.DELETE("/:id", h.DeleteCategory, admin...)

	// Settings routes
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings, admin...)

	// Hero routes
	hero := api.Group("/hero")
	hero.GET("/active", h.GetActiveHero)
	hero.POST("", h.CreateHero, admin...)
	hero.PUT("/:id", h.UpdateHero, admin...)

	// Currency routes
	api.GET("/currency/rates", h.GetRates)
	api.GET("/currency/convert", h.ConvertCurrency)
}
