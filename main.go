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

	"github.com/employee-portal/portal/backend/go-services/handlers"
	"github.com/employee-portal/portal/backend/go-services/internal/config"
	"github.com/employee-portal/portal/backend/go-services/internal/database"
	"github.com/employee-portal/portal/backend/go-services/internal/employees"
	"github.com/employee-portal/portal/backend/go-services/internal/tokens"
	"github.com/employee-portal/portal/backend/go-services/internal/users"
	"github.com/employee-portal/portal/backend/go-services/pkg/logger"
	"github.com/employee-portal/portal/backend/go-services/pkg/metrics"
	"github.com/employee-portal/portal/backend/go-services/pkg/middleware"
)

var startTime = time.Now()

func main() {
	// logging level controlled with LOG_LEVEL env: debug|info|warn|error|fatal
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: mongo=%v redis=%v origin=%s", cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.Server.Origin)

	r := gin.New()
	r.Use(middleware.CORS(cfg.Server.Origin))
	r.Use(middleware.Timeout(cfg.Server.IdleTimeout))
	r.Use(gin.Logger(), gin.Recovery())

	// Connect to Redis early so the denylist and rate limiter can use it
	var rdb *redis.Client
	if cfg.Redis.Host != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Host + ":" + cfg.Redis.Port, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
			rdb = nil
		} else {
			logger.Infof("connected to Redis at %s:%s", cfg.Redis.Host, cfg.Redis.Port)
		}
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && rdb != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			r.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			r.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	// shared runtime state used by handlers and readiness
	var userSvc *users.Service
	var mongoClient *mongo.Client

	ctx := context.Background()
	if cfg.MongoDB.URI != "" {
		// retry with backoff to tolerate startup races against the database
		const maxAttempts = 5
		backoff := time.Second
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			mongoClient, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
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
			mongoClient = nil
		} else {
			defer func() { _ = mongoClient.Disconnect(ctx) }()
		}
	}

	// storage: Mongo when available, in-memory otherwise (degraded mode,
	// nothing survives a restart)
	var employeeRepo employees.Repository
	if mongoClient != nil {
		db := mongoClient.Database(cfg.MongoDB.Database)
		userSvc = users.NewService(users.NewMongoUserRepository(db.Collection("users")), cfg.Auth.HashCost)
		employeeRepo = employees.NewMongoRepository(db.Collection("employees"), db.Collection("skilllevels"))
	} else {
		logger.Warnf("MongoDB unavailable, using in-memory credential and directory storage")
		userSvc = users.NewService(users.NewMemoryUserRepository(), cfg.Auth.HashCost)
		employeeRepo = employees.NewMemoryRepository()
	}

	denylist := tokens.NewDenylist(rdb)
	issuer := tokens.NewIssuer(cfg)
	verifier := tokens.NewVerifier(cfg, userSvc, denylist)

	handlers.NewAuthHandler(userSvc, issuer, verifier, denylist).Register(r)
	handlers.NewEmployeeHandler(employees.NewService(employeeRepo)).Register(r, middleware.AuthMiddleware(verifier))

	handlers.RegisterSwagger(r)

	r.GET("/ready", func(c *gin.Context) {
		deps := map[string]bool{
			"mongo": mongoClient != nil,
			"redis": rdb != nil || cfg.Redis.Host == "",
		}
		ready := deps["mongo"] && deps["redis"]
		status := http.StatusOK
		state := "ready"
		if !ready {
			status = http.StatusServiceUnavailable
			state = "not_ready"
		}
		c.JSON(status, gin.H{"status": state, "deps": deps, "uptime": time.Since(startTime).String()})
	})

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	logger.Infof("starting portal service on %s", addr)
	if err := r.Run(addr); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
