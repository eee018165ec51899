package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/profilekit/profilekit/handlers"
	"github.com/profilekit/profilekit/internal/config"
	"github.com/profilekit/profilekit/internal/database"
	"github.com/profilekit/profilekit/internal/oauth"
	"github.com/profilekit/profilekit/internal/sessions"
	"github.com/profilekit/profilekit/internal/storage"
	"github.com/profilekit/profilekit/internal/tokens"
	"github.com/profilekit/profilekit/internal/users"
	"github.com/profilekit/profilekit/pkg/logger"
	"github.com/profilekit/profilekit/pkg/metrics"
	"github.com/profilekit/profilekit/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level is controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v google=%v minio=%v", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Google.ClientID != "", cfg.MinIO.Endpoint != "")

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	// Lightweight CORS middleware for dev/test: set common headers and respond to OPTIONS.
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "Content-Length, Content-Disposition")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	})

	// Connect to Redis early so the blacklist and rate limiter can use it
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := redisClient.Ping(context.Background()).Err(); err == nil {
			sessions.SetBlacklistClient(redisClient)
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		} else {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			redisClient = nil
		}
	}

	// Optional global rate limiter (per-user when authenticated, otherwise per-IP)
	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(redisClient, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	ctx := context.Background()
	tokenSvc := tokens.NewService(cfg.JWT.Secret)

	// Connect to MongoDB with retry/backoff to tolerate startup races
	var userSvc *users.Service
	if cfg.MongoDB.URI != "" {
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn != nil {
			logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
		} else {
			defer func() { _ = client.Disconnect(ctx) }()
			repo := users.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("users"))
			if err := repo.EnsureIndexes(ctx); err != nil {
				logger.Warnf("failed to ensure user indexes: %v", err)
			}
			userSvc = users.NewService(repo, tokenSvc)
		}
	}

	// Object storage for profile attachments (optional)
	var store handlers.Storage
	if cfg.MinIO.Endpoint != "" {
		s, err := storage.NewMinIOStorage(cfg.MinIO)
		if err != nil {
			logger.Warnf("failed to initialize MinIO storage: %v", err)
		} else {
			store = s
		}
	}

	// Google OAuth collaborator (optional)
	var google handlers.Exchanger
	if cfg.Google.ClientID != "" && cfg.Google.Callback != "" {
		g, err := oauth.NewGoogle(ctx, cfg.Google)
		if err != nil {
			logger.Warnf("failed to initialize Google OAuth: %v", err)
		} else {
			google = g
		}
	}

	// Register handlers
	root := r.Group("/")
	if userSvc != nil {
		handlers.NewAuthHandler(userSvc, tokenSvc).Register(root)
		handlers.NewProfileHandler(userSvc, store).Register(root, middleware.AuthMiddleware(tokenSvc))
	} else {
		logger.Warnf("auth and profile handlers not registered because the user service is unavailable")
	}
	handlers.NewOAuthHandler(google, tokenSvc).Register(root)
	handlers.RegisterSwagger(r)

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Server is running")
	})

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// readiness: 200 only when critical dependencies are available
	r.GET("/ready", func(c *gin.Context) {
		ready := true
		deps := map[string]bool{}

		deps["users"] = userSvc != nil
		if userSvc == nil {
			ready = false
		}
		deps["storage"] = store != nil
		if cfg.Google.ClientID != "" {
			deps["oauth"] = google != nil
			if google == nil {
				ready = false
			}
		} else {
			deps["oauth"] = true
		}
		if cfg.Redis.Host != "" && cfg.RateLimit.UseRedis {
			deps["redis"] = redisClient != nil
			if redisClient == nil {
				ready = false
			}
		} else {
			deps["redis"] = true
		}

		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting profile service on %s (env=%s)", addr, cfg.Server.Environment)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
