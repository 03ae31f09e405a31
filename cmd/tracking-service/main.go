package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutor-track/internal/shared/config"
	"tutor-track/internal/shared/db"
	"tutor-track/internal/shared/health"
	"tutor-track/internal/shared/mq"
	"tutor-track/internal/shared/util"
	"tutor-track/internal/tracking/api"
	"tutor-track/internal/tracking/app"
	"tutor-track/internal/tracking/cache"
	"tutor-track/internal/tracking/consumer"
	"tutor-track/internal/tracking/repo"
	"tutor-track/internal/tracking/rmq"
)

func main() {
	log := util.New()

	log.Info("TrackingService", "Starting service initialization...")

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatal("Config", err)
	}
	log.OK("Config", "Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.ConnectToDB(ctx, &cfg.Database)
	if err != nil {
		log.Fatal("Database", err)
	}
	defer pool.Close()
	log.OK("Database", "Connected successfully")

	applied, err := db.Migrate(ctx, pool)
	if err != nil {
		log.Fatal("Database", err)
	}
	log.OK("Database", fmt.Sprintf("Migrations up to date (%d applied)", applied))

	rmqConn, rmqCh, err := mq.ConnectToRMQ(&cfg.RabbitMQ)
	if err != nil {
		log.Fatal("RabbitMQ", err)
	}
	defer rmqConn.Close()
	defer rmqCh.Close()

	if err := mq.DeclareTopology(rmqCh); err != nil {
		log.Fatal("RabbitMQ", err)
	}
	log.OK("RabbitMQ", "Connected, topology declared")

	journeys := repo.NewJourneyRepo(pool)
	locations := repo.NewLocationRepo(pool)
	sessions := repo.NewCachedSessionDirectory(repo.NewSessionRepo(pool))
	allocations := repo.NewAllocationRepo(pool)
	tracker := cache.NewTracker()
	publisher := rmq.NewPublisher(rmqCh)

	service := app.NewTrackingService(journeys, locations, sessions, allocations, tracker, publisher, cfg.Tracking, log)

	if err := service.Restore(ctx); err != nil {
		log.Fatal("Restore", err)
	}

	go service.RunMirror(ctx)
	go service.RunSweeper(ctx)

	hub := api.NewStudentHub([]byte(cfg.Auth.JWTSecret), log)
	locationConsumer := consumer.NewLocationConsumer(rmqCh, sessions, hub, log)
	if err := locationConsumer.Start(ctx); err != nil {
		log.Fatal("RabbitMQ", err)
	}

	handler := api.NewHandler(service, log)
	mux := handler.RegisterRoutes(
		[]byte(cfg.Auth.JWTSecret),
		hub,
		health.Handler("tracking-service", pool, rmqConn),
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: mux,
	}

	go func() {
		log.OK("HTTP", "tracking-service running on :"+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	rmqClosed := mq.MonitorConnection(rmqConn)

	select {
	case <-quit:
	case err := <-rmqClosed:
		if err != nil {
			log.Error("RabbitMQ", fmt.Errorf("connection lost, shutting down: %w", err))
		}
	}

	log.Warn("TrackingService", "Shutting down tracking-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP", err)
	} else {
		log.OK("HTTP", "Server stopped gracefully")
	}

	// Stops the sweeper and lets the mirror worker drain its queue.
	cancel()
	log.Info("TrackingService", "Shutdown complete")
}
