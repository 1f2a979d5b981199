package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"salon-server/cart"
	"salon-server/config"
	"salon-server/database"
	"salon-server/events"
	"salon-server/jobs"
	"salon-server/media"
	"salon-server/middleware"
	"salon-server/relay"
	"salon-server/routes"
	"salon-server/services"
	"salon-server/store"
	ws "salon-server/websocket"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if err := config.Load(); err != nil {
		log.Fatal("Failed to load configuration:", err)
	}
	cfg := config.AppConfig

	if err := database.Initialize(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := ws.NewHub(cfg.Realtime.ObserverBuffer, cfg.Realtime.HistorySize)
	workflow := services.NewWorkflow(store.New(database.DB), hub)
	views := services.NewViews(workflow.Store(), time.Now)
	auth := services.NewAuthService(database.DB)

	if cfg.Admin.Email != "" {
		if _, _, err := auth.EnsureAdmin(ctx, cfg.Admin.Email, cfg.Admin.Password, cfg.Admin.Name); err != nil {
			log.Fatal("Failed to create admin account:", err)
		}
	} else {
		log.Println("⚠️ ADMIN_EMAIL not set, no admin account was bootstrapped")
	}

	uploader, err := media.New(cfg.Cloudinary.URL, cfg.Cloudinary.Folder, cfg.Upload.Dir, cfg.Upload.BaseURL)
	if err != nil {
		log.Fatal("Failed to initialize media uploader:", err)
	}

	if cfg.Rabbit.URL != "" {
		startRelay(ctx, cfg.Rabbit, hub)
	}

	carts := cart.NewStore(cfg.Server.CartTTL)
	limiter := middleware.NewRateLimiter()

	cleanupJob := jobs.NewCleanupJob(limiter, carts, auth, 10*time.Minute)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	summaryJob := jobs.NewSummaryJob(views, hub, cfg.Realtime.SummaryInterval)
	summaryJob.Start()
	defer summaryJob.Stop()

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.RedirectTrailingSlash = false
	router.RedirectFixedPath = false

	router.Use(middleware.SecurityHeadersMiddleware())
	router.Use(middleware.InputValidationMiddleware())
	router.Use(middleware.RateLimitMiddleware(limiter))
	router.Use(middleware.CORSMiddleware(cfg.Server.CORSOrigins))
	router.Use(middleware.AuditLogMiddleware())

	if cfg.Cloudinary.URL == "" {
		router.Static(cfg.Upload.BaseURL, cfg.Upload.Dir)
	}

	api := &routes.API{
		DB:       database.DB,
		Workflow: workflow,
		Views:    views,
		Checkout: services.NewCheckout(workflow),
		Auth:     auth,
		Carts:    carts,
		Hub:      hub,
		Uploader: uploader,
	}
	api.Register(router)

	srv := &http.Server{
		Addr:              "0.0.0.0:" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Salon server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server shutdown failed: %v", err)
	}
	hub.Close()
}

// startRelay mirrors change events through RabbitMQ so every server
// instance behind the same exchange sees the same admin feed. Local events
// go out through the publisher; events from other instances come back in
// through an exclusive queue and are delivered to the local hub only.
func startRelay(ctx context.Context, cfg config.RabbitConfig, hub *ws.Hub) {
	publisher, err := relay.NewPublisher(cfg.URL, cfg.Exchange, cfg.Buffer)
	if err != nil {
		log.Printf("⚠️ Event relay disabled: %v", err)
		return
	}
	hub.AddSink(publisher)
	go func() {
		publisher.Run(ctx)
		_ = publisher.Close()
	}()

	origin := hub.Origin()
	go func() {
		err := relay.Consume(ctx, relay.ConsumerConfig{
			URL:       cfg.URL,
			Exchange:  cfg.Exchange,
			Exclusive: true,
			Name:      "salon-server-" + origin,
		}, 2*time.Second, func(_ context.Context, ev events.Event) error {
			if ev.Origin == origin {
				return nil
			}
			hub.Deliver(ev)
			return nil
		})
		if err != nil {
			log.Printf("❌ Event relay consumer stopped: %v", err)
		}
	}()
	log.Printf("📡 Event relay enabled on exchange %s", cfg.Exchange)
}
