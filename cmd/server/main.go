package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"discount-backend/internal/auth"
	"discount-backend/internal/config"
	"discount-backend/internal/database"
	"discount-backend/internal/db"
	"discount-backend/internal/handlers"
	"discount-backend/internal/health"
	apphttp "discount-backend/internal/http"
	"discount-backend/internal/mailer"
	"discount-backend/internal/metrics"
	"discount-backend/internal/middleware"
	"discount-backend/internal/models"
	"discount-backend/internal/push"
	"discount-backend/internal/repositories"
	"discount-backend/internal/services"
	"discount-backend/internal/whatsapp"
	"discount-backend/internal/ws"
	"discount-backend/migrations"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	ctx := context.Background()

	migrator := database.NewMigrator(pool, migrations.FS)
	if err := migrator.Run(ctx); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	contactRepo := repositories.NewContactRepository(pool)
	couponRepo := repositories.NewCouponRepository(pool)
	requestRepo := repositories.NewRequestRepository(pool)
	settingRepo := repositories.NewSettingRepository(pool)
	pushRepo := repositories.NewPushSubscriptionRepository(pool)
	sessionRepo := repositories.NewSessionRepository(pool)

	if err := bootstrapSuperadmin(ctx, userRepo); err != nil {
		log.Fatalf("Failed to bootstrap superadmin: %v", err)
	}

	// Notification channels
	waService := whatsapp.NewService(cfg.WhatsApp.Token, cfg.WhatsApp.PhoneNumberID)
	mailService := mailer.New(cfg.SMTP)
	pushNotifier := push.NewNotifier(cfg.Push, pushRepo)
	hub := ws.NewHub()

	// Services
	sessionManager := auth.NewSessionManager(sessionRepo, cfg.App.SessionSecret)
	notifier := services.NewNotificationService(settingRepo, waService, mailService, pushNotifier, hub)
	authService := services.NewAuthService(userRepo, sessionManager)
	userService := services.NewUserService(userRepo)
	contactService := services.NewContactService(contactRepo)
	couponService := services.NewCouponService(couponRepo)
	requestService := services.NewRequestService(requestRepo, notifier)

	healthChecker := health.NewHealthChecker(pool)

	secureCookie := cfg.App.Env == "production"

	// Handlers
	h := apphttp.Handlers{
		Auth:     handlers.NewAuthHandler(authService, cfg.App.SessionCookie, secureCookie),
		Requests: handlers.NewRequestHandler(requestService),
		Contacts: handlers.NewContactHandler(contactService),
		Users:    handlers.NewUserHandler(userService),
		Coupons:  handlers.NewCouponHandler(couponService),
		Settings: handlers.NewSettingHandler(settingRepo),
		Push:     handlers.NewPushHandler(pushNotifier, pushRepo),
		PWA:      handlers.NewPWAHandler(cfg.App.Name),
		Health:   handlers.NewHealthHandler(healthChecker),
	}

	authMW := middleware.NewAuthMiddleware(sessionManager, cfg.App.SessionCookie)
	router := apphttp.NewRouter(h, authMW, hub, cfg.CORS.AllowedOrigins)

	go metrics.CollectSystem(30 * time.Second)
	go purgeSessions(sessionManager)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("%s listening on %s", cfg.App.Name, addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

// bootstrapSuperadmin creates the initial account on an empty users table so
// the first login is possible without touching the database by hand.
func bootstrapSuperadmin(ctx context.Context, users *repositories.UserRepository) error {
	existing, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	password := os.Getenv("DISCOUNT_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
		log.Println("WARNING: seeding superadmin with the default password, change it immediately")
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	admin := &models.User{
		Username:     "admin",
		Email:        "admin@localhost",
		PasswordHash: hash,
		Role:         models.RoleSuperadmin,
		IsActive:     true,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}

	log.Println("Seeded initial superadmin account 'admin'")
	return nil
}

// purgeSessions drops expired session rows once an hour
func purgeSessions(sessions *auth.SessionManager) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if n, err := sessions.PurgeExpired(ctx); err != nil {
			log.Printf("Session purge failed: %v", err)
		} else if n > 0 {
			log.Printf("Purged %d expired session(s)", n)
		}
		cancel()
	}
}
