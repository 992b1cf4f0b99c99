package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/teatime/teashop-api/config"
	"github.com/teatime/teashop-api/controllers"
	"github.com/teatime/teashop-api/metrics"
	"github.com/teatime/teashop-api/middleware"
	"github.com/teatime/teashop-api/models"
)

// SetupRouter wires every route of the API onto a new gin engine
func SetupRouter(cfg *config.Config) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(metrics.PrometheusMiddleware())
	router.Use(middleware.CORS(cfg))

	router.GET("/metrics", metrics.Handler())

	auth := middleware.EnsureValidToken(cfg)
	privileged := middleware.RequirePrivileged()
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", controllers.HealthCheck)
		v1.GET("/database/status", controllers.DatabaseStatus)
		v1.GET("/uploads/:filename", controllers.GetUploadedImage)

		authRoutes := v1.Group("/auth")
		{
			authRoutes.POST("/register", controllers.Register)
			authRoutes.POST("/login", controllers.Login)
			authRoutes.POST("/logout", controllers.Logout)
		}

		users := v1.Group("/users", auth)
		{
			users.GET("/me", controllers.GetMyProfile)
			users.PUT("/me", controllers.UpdateMyProfile)
			users.GET("", adminOnly, controllers.ListUsers)
			users.GET("/:id", adminOnly, controllers.GetUser)
			users.PUT("/:id/role", adminOnly, controllers.UpdateUserRole)
			users.DELETE("/:id", adminOnly, controllers.DeleteUser)
		}

		orders := v1.Group("/orders", auth)
		{
			orders.POST("", controllers.CreateOrder)
			orders.GET("", controllers.ListOrders)
			orders.GET("/all", privileged, controllers.ListAllOrders)
			orders.GET("/:id", controllers.GetOrder)
			orders.PATCH("/:id/cancel", controllers.CancelOrder)
			orders.PUT("/:id/status", privileged, controllers.UpdateOrderStatus)
		}

		addresses := v1.Group("/addresses", auth)
		{
			addresses.GET("", controllers.ListAddresses)
			addresses.POST("", controllers.CreateAddress)
			addresses.PUT("/:id", controllers.UpdateAddress)
			addresses.DELETE("/:id", controllers.DeleteAddress)
			addresses.PATCH("/:id/default", controllers.SetDefaultAddress)
		}

		v1.GET("/products", controllers.ListProducts)
		v1.GET("/products/:id", controllers.GetProduct)
		v1.POST("/products", auth, privileged, controllers.CreateProduct)
		v1.PUT("/products/:id", auth, privileged, controllers.UpdateProduct)
		v1.DELETE("/products/:id", auth, privileged, controllers.DeleteProduct)
		v1.POST("/products/:id/image", auth, privileged, controllers.UploadProductImage)

		v1.GET("/toppings", controllers.ListToppings)
		v1.POST("/toppings", auth, privileged, controllers.CreateTopping)
		v1.PUT("/toppings/:id", auth, privileged, controllers.UpdateTopping)
		v1.DELETE("/toppings/:id", auth, privileged, controllers.DeleteTopping)

		v1.GET("/stores", controllers.ListStores)
		v1.GET("/stores/:id", controllers.GetStore)
		v1.POST("/stores", auth, privileged, controllers.CreateStore)
		v1.PUT("/stores/:id", auth, privileged, controllers.UpdateStore)
		v1.DELETE("/stores/:id", auth, privileged, controllers.DeleteStore)

		v1.GET("/news", controllers.ListNews)
		v1.GET("/news/all", auth, privileged, controllers.ListAllNews)
		v1.GET("/news/:id", controllers.GetNews)
		v1.POST("/news", auth, privileged, controllers.CreateNews)
		v1.PUT("/news/:id", auth, privileged, controllers.UpdateNews)
		v1.DELETE("/news/:id", auth, privileged, controllers.DeleteNews)
		v1.POST("/news/:id/image", auth, privileged, controllers.UploadNewsImage)

		v1.GET("/settings", controllers.ListSettings)
		v1.GET("/settings/:key", controllers.GetSetting)
		v1.PUT("/settings/:key", auth, adminOnly, controllers.PutSetting)
		v1.DELETE("/settings/:key", auth, adminOnly, controllers.DeleteSetting)
	}

	return router
}
