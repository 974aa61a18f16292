package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-otp-auth/config"
	"github.com/oksasatya/go-otp-auth/internal/container"
	chatinfra "github.com/oksasatya/go-otp-auth/internal/infrastructure/chat"
	mongoinfra "github.com/oksasatya/go-otp-auth/internal/infrastructure/mongo"
	pginfra "github.com/oksasatya/go-otp-auth/internal/infrastructure/postgres"
	"github.com/oksasatya/go-otp-auth/internal/interface/middleware"
	"github.com/oksasatya/go-otp-auth/internal/router"
	"github.com/oksasatya/go-otp-auth/pkg/helpers"
	"github.com/oksasatya/go-otp-auth/pkg/mailer"
	"github.com/oksasatya/go-otp-auth/pkg/validation"
)

const mailQueueSize = 256

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	// MongoDB credential store
	mc, err := mongoinfra.Connect(ctx, cfg.MongoURI, cfg.MongoTimeout)
	if err != nil {
		log.Fatalf("failed to connect to mongodb: %v", err)
	}
	defer func() { _ = mc.Disconnect(context.Background()) }()
	db := mc.Database(cfg.MongoDB)
	idxCtx, cancelIdx := context.WithTimeout(ctx, cfg.MongoTimeout)
	if err := mongoinfra.NewUserRepository(db).EnsureIndexes(idxCtx); err != nil {
		log.Fatalf("failed to create user indexes: %v", err)
	}
	cancelIdx()

	// Redis (optional): rate limits and chat cooldown
	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer func() { _ = rdb.Close() }()
		container.SetRedis(rdb)
	}

	// Postgres audit trail (optional)
	if cfg.AuditDBDSN != "" {
		if err := pginfra.RunMigrations(cfg.AuditDBDSN, cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.AuditDBDSN)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		container.SetAudit(pginfra.NewAuditRepository(pool))
	}

	// Mail: RabbitMQ queue when configured, in-process workers otherwise
	if cfg.RabbitMQURL != "" {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
		if err != nil {
			log.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer pub.Close()
		container.SetMail(mailer.NewQueueDispatcher(pub))
	} else {
		sender, err := mailer.NewSender(cfg, logger)
		if err != nil {
			log.Fatalf("failed to init mail sender: %v", err)
		}
		local := mailer.NewLocalDispatcher(sender, logger, cfg.MailWorkers, mailQueueSize)
		defer local.Close()
		container.SetMail(local)
	}

	// Chat provider (optional)
	if cfg.ChatEnabled() {
		provider, err := chatinfra.New(ctx, cfg)
		if err != nil {
			log.Fatalf("failed to init chat provider: %v", err)
		}
		if c, ok := provider.(interface{ Close() error }); ok {
			defer func() { _ = c.Close() }()
		}
		container.SetChat(provider)
	} else {
		logger.WithField("provider", cfg.ChatProvider).Info("chat disabled: no api key configured")
	}

	jwtManager := helpers.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetMongo(db)
	container.SetJWT(jwtManager)

	// Gin engine and global middleware
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(corsCfg))
	if cfg.Env == "development" {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.WithFields(logrus.Fields{"port": cfg.Port, "env": cfg.Env}).Info("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
	}
	logger.Info("server exited properly")
}
