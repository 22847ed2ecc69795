package main

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"wastetrack/internal/config"
	"wastetrack/internal/database"
	"wastetrack/internal/metrics"
	"wastetrack/internal/middleware"
	"wastetrack/internal/modules/admin"
	"wastetrack/internal/modules/auth"
	"wastetrack/internal/modules/branch"
	"wastetrack/internal/modules/inventory"
	"wastetrack/internal/modules/security"
	"wastetrack/internal/modules/waste"
	"wastetrack/internal/pkg/password"
	"wastetrack/internal/pkg/token"
	"wastetrack/internal/repository"
)

func main() {
	// .env is optional, deployments configure the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attemptRepo := repository.NewLoginAttemptRepository(db)
	rateRepo := repository.NewRateLimitRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	wasteRepo := repository.NewWasteRepository(db)

	tokens, err := token.NewManager(
		cfg.TokenIssuer, cfg.TokenAudience,
		cfg.AccessTokenSecret, cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL, cfg.RefreshTTL,
	)
	if err != nil {
		log.Fatalf("token manager: %v", err)
	}
	hasher := password.NewHasher(cfg.BcryptCost)
	m := metrics.New()

	hub := security.NewHub()
	defer hub.Close()
	notifier := security.NewNotifier(hub)

	rl := middleware.NewRateLimiter(rateRepo, cfg.RateLimits, tokens, m, notifier)
	guards := middleware.NewGuards(rl, middleware.RequireAuth(tokens, sessionRepo))

	authService := auth.NewService(
		userRepo, sessionRepo, attemptRepo,
		tokens, hasher, notifier, m,
		int64(cfg.LockoutThreshold), cfg.LockoutWindow,
	)
	authHandler := auth.NewHandler(authService, auth.CookieSettings{
		Secure:      cfg.CookieSecure,
		SameSite:    cfg.SameSiteMode(),
		RefreshPath: cfg.RefreshCookiePath,
	})

	adminHandler := admin.NewHandler(admin.NewService(userRepo, branchRepo, sessionRepo, hasher))
	branchHandler := branch.NewHandler(branch.NewService(branchRepo))
	inventoryHandler := inventory.NewHandler(inventory.NewService(inventoryRepo, branchRepo))
	wasteHandler := waste.NewHandler(waste.NewService(wasteRepo, inventoryRepo))
	securityHandler := security.NewHandler(hub, attemptRepo)

	r := gin.New()
	r.Use(middleware.ErrorLogger())
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(m.Instrument())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", m.Handler())

	v1 := r.Group("/api/v1")
	{
		authHandler.RegisterRoutes(v1, guards)
		adminHandler.RegisterRoutes(v1, guards)
		branchHandler.RegisterRoutes(v1, guards)
		inventoryHandler.RegisterRoutes(v1, guards)
		wasteHandler.RegisterRoutes(v1, guards)
		securityHandler.RegisterRoutes(v1, guards)
	}

	log.Printf("listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
