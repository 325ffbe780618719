package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resiliencehub/config"
	"resiliencehub/internal/alert"
	"resiliencehub/internal/api"
	"resiliencehub/internal/auth"
	"resiliencehub/internal/identity"
	"resiliencehub/internal/resource"
	"resiliencehub/internal/shelter"
	"resiliencehub/internal/user"
	"resiliencehub/pkg/cache"
	"resiliencehub/pkg/consul"
	"resiliencehub/pkg/firebase"
	"resiliencehub/pkg/token"
	"resiliencehub/pkg/zap"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg := config.LoadConfig()

	logger, err := zap.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is required")
	}

	consulConn := consul.NewConsulConn(logger, cfg)
	consulConn.Connect()
	defer consulConn.Deregister()

	mongoClient, err := connectToMongoDB(cfg.MongoURI)
	if err != nil {
		logger.Fatalf("Failed to connect to MongoDB: %v", err)
	}

	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Errorw("Failed to disconnect MongoDB", "error", err)
		}
	}()

	ctx := context.Background()

	app, messagingClient, err := firebase.SetUpFireBase(ctx, cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize Firebase: %v", err)
	}

	provider, err := identity.NewFirebaseProvider(ctx, app, cfg.FirebaseAPIKey)
	if err != nil {
		logger.Fatalf("Failed to initialize identity provider: %v", err)
	}

	var profileCache auth.Cache
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(cfg)
		if err != nil {
			logger.Warnw("Redis unavailable, using in-process sessions only", "addr", cfg.RedisAddr, "error", err)
		} else {
			profileCache = redisCache
			defer func() { _ = redisCache.Close() }()
		}
	}

	db := mongoClient.Database(cfg.MongoDB)

	userRepository := user.NewUserRepository(db.Collection("users"))
	shelterRepository := shelter.NewShelterRepository(db.Collection("shelters"))
	resourceRepository := resource.NewResourceRepository(db.Collection("resources"))
	alertRepository := alert.NewAlertRepository(db.Collection("alerts"))

	gate := auth.NewGate(provider, userRepository, profileCache, token.NewManager(cfg.JWTSecret, cfg.JWTTTL), logger, cfg.ProfileCacheTTL)
	gate.Start()
	defer gate.Close()

	hub := alert.NewHub(logger)
	defer hub.Close()

	shelterService := shelter.NewShelterService(shelterRepository, userRepository, logger)
	resourceService := resource.NewResourceService(resourceRepository, shelterService)
	alertService := alert.NewAlertService(alertRepository, shelterService, logger,
		alert.NewTopicNotifier(messagingClient, cfg.AlertTopic), hub)

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := api.NewRouter(logger, gate, api.Handlers{
		Auth:     auth.NewAuthHandler(gate, logger),
		Shelter:  shelter.NewShelterHandler(shelterService, gate, logger),
		Resource: resource.NewResourceHandler(resourceService, logger),
		Alert:    alert.NewAlertHandler(alertService, gate, hub, logger),
	}, map[string]api.HealthCheck{
		"mongo": func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		},
	})

	c := cron.New(cron.WithSeconds())
	_, err = c.AddFunc(cfg.DriftAuditSchedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := shelterService.AuditOccupancy(ctx); err != nil {
			logger.Errorw("Occupancy audit failed", "error", err)
		}
	})
	if err != nil {
		logger.Fatalf("AddFunc error: %v", err)
	}

	_, err = c.AddFunc("@every 10m", func() {
		if dropped := gate.Sweep(); dropped > 0 {
			logger.Debugw("Expired sessions dropped", "count", dropped)
		}
	})
	if err != nil {
		logger.Fatalf("AddFunc error: %v", err)
	}

	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorw("Error shutting down server", "error", err)
	}
	logger.Info("Server stopped")
}

func connectToMongoDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}
