package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tontine.backend/internal/config"
	pgsource "tontine.backend/internal/infrastructure/datasources/postgres"
	"tontine.backend/internal/infrastructure/events"
	"tontine.backend/internal/infrastructure/jobs"
	"tontine.backend/internal/infrastructure/models"
	"tontine.backend/internal/infrastructure/repositories"
	"tontine.backend/internal/interfaces/http/handlers"
	"tontine.backend/internal/interfaces/http/middleware"
	"tontine.backend/internal/usecases"
	"tontine.backend/pkg/jwt"
	"tontine.backend/pkg/logger"
	"tontine.backend/pkg/redis"
)

var (
	loadDotenv = godotenv.Load
	loadCfg    = config.Load
	initLog    = logger.Init
	initRedis  = redis.Init
	openDB     = func(dsn string) (*gorm.DB, error) {
		sqlDB, err := pgsource.Open(dsn)
		if err != nil {
			return nil, err
		}
		return gorm.Open(postgres.New(postgres.Config{
			Conn: sqlDB,
		}), &gorm.Config{
			PrepareStmt:          false,
			DisableAutomaticPing: true,
		})
	}
	migrateDB       = func(db *gorm.DB) error { return db.AutoMigrate(models.All()...) }
	newSessionStore = redis.NewSessionStore
	runServer       = func(r *gin.Engine, port string) error { return r.Run(":" + port) }
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database.URL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		logger.Warn(ctx, "Database not available, endpoints will return errors", zap.Error(err))
	} else {
		logger.Info(ctx, "Connected to database")
		if cfg.Server.AutoMigrate {
			if err := migrateDB(db); err != nil {
				return fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info(ctx, "Database schema migrated")
		}
	}

	jwtService := jwt.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.AccessExpiry,
		cfg.JWT.RefreshExpiry,
	)

	// Repositories
	accountRepo := repositories.NewAccountRepository(db)
	emailVerifRepo := repositories.NewEmailVerificationRepository(db)
	tontineRepo := repositories.NewTontineRepository(db)
	participationRepo := repositories.NewParticipationRepository(db)
	roundRepo := repositories.NewRoundRepository(db)
	paymentRepo := repositories.NewPaymentRepository(db)
	notificationRepo := repositories.NewNotificationRepository(db)
	verificationRepo := repositories.NewIdentityVerificationRepository(db)
	uow := repositories.NewUnitOfWork(db)

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return fmt.Errorf("failed to initialize session store: %w", err)
	}

	// Notifications are written by a bus subscriber inside the publishing transaction
	bus := events.NewBus()
	notificationUsecase := usecases.NewNotificationUsecase(
		notificationRepo,
		paymentRepo,
		events.NewRedisNotificationPublisher(),
		usecases.ReminderSettings{
			Window:             cfg.Scheduler.ReminderWindow,
			HighPriorityWindow: cfg.Scheduler.HighPriorityWindow,
		},
	)
	bus.Subscribe(notificationUsecase)

	// Usecases
	authUsecase := usecases.NewAuthUsecase(accountRepo, emailVerifRepo, uow, jwtService, sessionStore)
	tontineUsecase := usecases.NewTontineUsecase(tontineRepo, participationRepo, uow, bus, usecases.TontineSettings{
		DefaultCurrency:    cfg.Tontine.DefaultCurrency,
		InviteCodeAttempts: cfg.Tontine.InviteCodeAttempts,
	})
	roundUsecase := usecases.NewRoundUsecase(tontineRepo, participationRepo, roundRepo, paymentRepo, uow, bus)
	paymentUsecase := usecases.NewPaymentUsecase(tontineRepo, participationRepo, roundRepo, paymentRepo, uow, bus)
	webhookUsecase := usecases.NewWebhookUsecase(paymentUsecase)
	verificationUsecase := usecases.NewVerificationUsecase(accountRepo, verificationRepo, uow, bus)
	adminUsecase := usecases.NewAdminUsecase(accountRepo, tontineRepo, paymentRepo, verificationRepo, uow, bus, sessionStore)

	// Handlers
	authHandler := handlers.NewAuthHandler(authUsecase)
	tontineHandler := handlers.NewTontineHandler(tontineUsecase)
	roundHandler := handlers.NewRoundHandler(roundUsecase)
	paymentHandler := handlers.NewPaymentHandler(paymentUsecase)
	webhookHandler := handlers.NewWebhookHandler(webhookUsecase, cfg.Security.WebhookSecret)
	notificationHandler := handlers.NewNotificationHandler(notificationUsecase)
	verificationHandler := handlers.NewVerificationHandler(verificationUsecase)
	adminHandler := handlers.NewAdminHandler(adminUsecase)

	if cfg.Security.WebhookSecret == "" {
		logger.Warn(ctx, "PAYMENT_WEBHOOK_SECRET is empty, provider webhooks are not authenticated")
	}

	// Background jobs
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var scheduleJob *jobs.RoundScheduleJob
	if cfg.Scheduler.Enabled {
		scheduleJob = jobs.NewRoundScheduleJob(roundUsecase, notificationUsecase, cfg.Scheduler.SweepInterval)
		go scheduleJob.Start(jobCtx)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())

	applyCORSMiddleware(r)
	registerHealthRoute(r)
	registerMetricsRoute(r)
	registerAPIV1Routes(r, routeDeps{
		authHandler:         authHandler,
		tontineHandler:      tontineHandler,
		roundHandler:        roundHandler,
		paymentHandler:      paymentHandler,
		webhookHandler:      webhookHandler,
		notificationHandler: notificationHandler,
		verificationHandler: verificationHandler,
		adminHandler:        adminHandler,
		authMiddleware:      middleware.AuthMiddleware(authUsecase),
	})

	logger.Debug(ctx, "Routes registered", zap.Int("count", len(r.Routes())))

	// Graceful shutdown
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info(context.Background(), "Shutting down server")
		if scheduleJob != nil {
			scheduleJob.Stop()
		}
		cancel()
	}()

	logger.Info(ctx, "Tontine backend starting",
		zap.String("port", cfg.Server.Port),
		zap.String("api", "http://localhost:"+cfg.Server.Port+"/api/v1"),
	)

	if err := runServer(r, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}
