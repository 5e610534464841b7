package main

import (
	"log"

	_ "vms/api/swagger" // swagger docs
	"vms/internal/auth"
	"vms/internal/config"
	"vms/internal/database"
	"vms/internal/facestore"
	"vms/internal/handler"
	"vms/internal/repository"
	"vms/internal/service"
	"vms/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Visitor Management API
// @version         1.0
// @description     Backend for visitor registration, multi-modal login and appointment lifecycle tracking.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	if err := godotenv.Load("configs/.env"); err != nil {
		log.Println("No configs/.env file found or error loading it")
	}

	cfg := config.Load()

	db, err := database.NewConnection(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.SeedAdmin(db); err != nil {
		log.Fatalf("Admin seed failed: %v", err)
	}

	faces, err := facestore.NewDiskStore(cfg.FaceImageDir)
	if err != nil {
		log.Fatalf("Face image store init failed: %v", err)
	}

	// Set up WebSocket Hub for gate activity
	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Set up dependencies (Repository -> Service -> Handler)
	userRepo := repository.NewUserRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	apptRepo := repository.NewAppointmentRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	txManager := repository.NewTransactionManager(db)

	issuer := auth.NewSessionIssuer(cfg)
	resolver := service.NewVisitorResolver(userRepo, faces)
	otpService := service.NewOTPService(otpRepo, userRepo, issuer)
	authService := service.NewAuthService(userRepo, resolver, service.StubFaceMatcher{}, issuer)
	apptService := service.NewAppointmentService(apptRepo, userRepo, auditRepo, resolver, txManager, wsHub)
	adminService := service.NewAdminService(userRepo, apptRepo, auditRepo, faces, txManager, cfg.DefaultStaffPassword)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService, otpService)
	visitorHandler := handler.NewVisitorHandler(apptService, cfg.JWTSecret)
	employeeHandler := handler.NewEmployeeHandler(apptService, adminService, cfg.JWTSecret)
	securityHandler := handler.NewSecurityHandler(apptService, cfg.JWTSecret)
	adminHandler := handler.NewAdminHandler(adminService, apptService, cfg.FaceImageDir, cfg.JWTSecret)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:3000"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint (staff-only gate activity feed)
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, cfg.JWTSecret)
	})

	// Register API Routes
	api := router.Group("/api/v1")
	authHandler.RegisterRoutes(api)
	visitorHandler.RegisterRoutes(api)
	employeeHandler.RegisterRoutes(api)
	securityHandler.RegisterRoutes(api)
	adminHandler.RegisterRoutes(api)

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
