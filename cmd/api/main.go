package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"blogink/internal/config"
	"blogink/internal/database"
	"blogink/internal/gateway/sslcommerz"
	"blogink/internal/middleware"
	"blogink/internal/modules/auth"
	"blogink/internal/modules/payment"
	jwtsvc "blogink/internal/pkg/jwt"
	"blogink/internal/repository"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTAccessTTL)

	gatewayClient := sslcommerz.NewClient(sslcommerz.Config{
		StoreID:   cfg.StoreID,
		StorePass: cfg.StorePass,
		Sandbox:   cfg.SandboxMode,
		Timeout:   cfg.GatewayTimeout,
	})

	authService := auth.NewService(userRepo, j)
	authHandler := auth.NewHandler(authService)

	paymentService := payment.NewService(userRepo, paymentRepo, gatewayClient, cfg.BackendBaseURL, log.Printf)
	paymentHandler := payment.NewHandler(paymentService, cfg.FrontendBaseURL, log.Printf)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterRoutes(v1)
		paymentHandler.RegisterPublicRoutes(v1)

		// protected
		protected := v1.Group("/")
		protected.Use(middleware.RequireAuth(j))
		{
			authHandler.RegisterProtectedRoutes(protected)
			paymentHandler.RegisterProtectedRoutes(protected)

			staff := protected.Group("/")
			staff.Use(middleware.StaffOnly())
			{
				paymentHandler.RegisterStaffRoutes(staff)
			}
		}
	}

	if err := r.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
