package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/suhani1920/Aura-Grow/internal/alerting"
	"github.com/suhani1920/Aura-Grow/internal/config"
	"github.com/suhani1920/Aura-Grow/internal/controller"
	"github.com/suhani1920/Aura-Grow/internal/push"
	"github.com/suhani1920/Aura-Grow/internal/repository"
	"github.com/suhani1920/Aura-Grow/internal/routes"
	"github.com/suhani1920/Aura-Grow/internal/service"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	monitoring, err := config.LoadMonitoring(".")
	if err != nil {
		log.Fatalf("Error loading monitoring config: %v", err)
	}

	// Reading store
	repo := repository.NewInfluxRepository(cfg.InfluxDBURL, cfg.InfluxDBToken, cfg.InfluxDBOrg, cfg.InfluxDBBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := repo.EnsureBucket(ctx); err != nil {
		log.Printf("Warning: could not ensure readings bucket: %v", err)
	}
	cancel()

	// Push channels
	hub := push.NewHub()
	go hub.Run()

	sinks := []alerting.Sink{hub, alerting.LogSink{}}
	if cfg.PushWebhookURL != "" {
		sinks = append(sinks, alerting.NewWebhookSink(cfg.PushWebhookURL))
	}
	engine := alerting.NewEngine(sinks...)

	// Dashboard service and refresh loop
	svc := service.NewDashboardService(repo, engine, monitoring, hub)
	go svc.Run()
	defer svc.Close()
	svc.NotifyChange() // initial load

	// Recommendation store is optional; without Redis the panel is disabled.
	var recommendations *controller.RecommendationController
	if cfg.RedisAddr != "" {
		store, err := repository.NewRedisRecommendationStore(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			log.Fatalf("Error initializing Redis: %v", err)
		}
		recommendations = controller.NewRecommendationController(store)
		log.Println("Connected to Redis successfully!")
	} else {
		log.Println("REDIS_ADDR not set, recommendations disabled")
	}

	dashboard := controller.NewDashboardController(svc, repo, engine)
	router := routes.SetupRouter(dashboard, recommendations, hub)

	// CORS setup
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	handler := c.Handler(router)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	go func() {
		log.Printf("Server is running on port %s...", cfg.Port)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	log.Println("Server gracefully stopped.")
}
