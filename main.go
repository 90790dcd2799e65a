package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mehryaan-backend/internal/config"
	"mehryaan-backend/internal/database"
	"mehryaan-backend/internal/handlers"
	"mehryaan-backend/internal/logging"
	"mehryaan-backend/internal/middleware"
	"mehryaan-backend/internal/payment"
	"mehryaan-backend/internal/uploads"
)

func main() {
	logWriter := logging.NewWriter(os.Stderr)
	log.SetOutput(logWriter)

	config.Load()
	cfg := config.AppEnv

	client, err := database.Connect(cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(cfg.DBName)

	// flushes the lines logged before the connection existed
	logWriter.Attach(db)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("user index warning: %v", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Printf("order index warning: %v", err)
	}
	if err := database.EnsureSessionIndexes(db); err != nil {
		log.Printf("session index warning: %v", err)
	}
	if err := database.EnsureIdempotencyIndexes(db); err != nil {
		log.Printf("idempotency index warning: %v", err)
	}

	bridge := buildUploadBridge(cfg)
	gateway := buildPaymentGateway(cfg)

	r := gin.Default()

	// the SPA sends the session cookie cross-origin, so credentials must be
	// allowed for its exact origin
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		AllowCredentials: true,
	}))

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	})

	auth := r.Group("/api/auth")
	{
		auth.POST("/signup", handlers.Signup(db, cfg))
		auth.POST("/login", handlers.Login(db, cfg))
		auth.POST("/logout", handlers.Logout(db))
		auth.GET("/session", handlers.SessionInfo(db))
		auth.GET("/check-session", handlers.CheckSession(db))

		auth.GET("/me", middleware.Protect(db, cfg.JWTSecret), handlers.Me(db))
		auth.GET("/profile", middleware.Protect(db, cfg.JWTSecret), handlers.ProfileWithOrders(db))
		auth.PUT("/profile", middleware.Protect(db, cfg.JWTSecret), handlers.UpdateProfile(db))
	}

	products := r.Group("/api/products")
	{
		products.GET("", handlers.GetProducts(db))
		products.GET("/:id", handlers.GetProduct(db))

		admin := products.Group("")
		admin.Use(middleware.Protect(db, cfg.JWTSecret), middleware.Authorize("admin"))
		{
			admin.POST("", handlers.CreateProduct(db))
			admin.PUT("/:id", handlers.UpdateProduct(db))
			admin.DELETE("/:id", handlers.DeleteProduct(db))
		}
	}

	orders := r.Group("/api/orders")
	orders.Use(middleware.Protect(db, cfg.JWTSecret))
	{
		orders.POST("", handlers.CreateOrder(db, bridge, gateway))
		orders.POST("/stripe-checkout", handlers.StripeCheckout(db, bridge, gateway))
		orders.GET("/user", handlers.GetUserOrders(db))
		orders.POST("/:id/cancel", handlers.CancelOrder(db))

		admin := orders.Group("")
		admin.Use(middleware.Authorize("admin"))
		{
			admin.GET("", handlers.GetAllOrders(db))
			admin.PUT("/bulk/status", handlers.BulkUpdateStatus(db))
			admin.GET("/filter/date", handlers.FilterOrdersByDate(db))
			admin.GET("/search/customer", handlers.SearchOrdersByCustomer(db))
			admin.GET("/statistics/dashboard", handlers.OrderStatistics(db))
			admin.PUT("/:id", handlers.UpdateOrder(db))
			admin.DELETE("/:id", handlers.DeleteOrder(db))
		}

		// owner-or-admin check happens inside the handler
		orders.GET("/:id", handlers.GetOrder(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r.Run(":" + port)
}

// buildUploadBridge wires the image bridge from config: Cloudinary when
// credentials are present, Redis-backed dedup when an address is set. With
// neither, the bridge passes values through untouched.
func buildUploadBridge(cfg config.Config) *uploads.Bridge {
	var store uploads.RemoteStore
	if cfg.CloudinaryConfigured() {
		cld, err := uploads.NewCloudinaryStore(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			log.Printf("cloudinary init failed, uploads disabled: %v", err)
		} else {
			store = cld
		}
	} else {
		log.Println("cloudinary not configured, inline images pass through unmodified")
	}

	var cache uploads.Cache
	if cfg.RedisAddr != "" {
		cache = uploads.NewRedisCache(cfg.RedisAddr, 24*time.Hour)
		log.Println("upload dedup cache backed by redis at", cfg.RedisAddr)
	}

	return uploads.NewBridge(store, cache, cfg.CloudinaryBaseFolder)
}

func buildPaymentGateway(cfg config.Config) *payment.Bridge {
	if cfg.StripeSecretKey == "" {
		log.Println("stripe not configured, checkout and invoicing disabled")
		return payment.NewBridge(nil)
	}
	return payment.NewBridge(payment.NewStripeAPI(cfg.StripeSecretKey))
}
