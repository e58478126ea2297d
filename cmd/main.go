package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/matchforge/registration-system/config"
	"github.com/matchforge/registration-system/db"
	"github.com/matchforge/registration-system/handlers"
	"github.com/matchforge/registration-system/notifications"
	"github.com/matchforge/registration-system/repositories"
	api "github.com/matchforge/registration-system/routes"
	"github.com/matchforge/registration-system/services"
	"github.com/matchforge/registration-system/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к базе данных
	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	// Инициализация хранилища файлов (Cloudflare R2)
	uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// WebSocket Hub для комнат турниров
	wsHub := notifications.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	sportEventRepo := repositories.NewPostgresSportEventRepository(dbConn)
	joinRequestRepo := repositories.NewPostgresJoinRequestRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	authService := services.NewAuthService(userRepo)
	tournamentService := services.NewTournamentService(tournamentRepo, sportEventRepo)
	sportEventService := services.NewSportEventService(sportEventRepo, tournamentRepo, uploader)
	capacityLedger := services.NewCapacityLedger(sportEventRepo)
	joinRequestService := services.NewJoinRequestService(
		joinRequestRepo,
		sportEventRepo,
		tournamentRepo,
		participantRepo,
		capacityLedger,
		logger,
	)
	intakeService := services.NewIntakeService(
		tournamentRepo,
		sportEventRepo,
		joinRequestService,
		uploader,
		logger,
	)
	reviewService := services.NewReviewService(
		joinRequestRepo,
		sportEventRepo,
		tournamentRepo,
		joinRequestService,
		wsHub,
	)
	bracketService := services.NewBracketService(
		dbConn,
		matchRepo,
		participantRepo,
		sportEventRepo,
		tournamentRepo,
		wsHub,
		logger,
	)
	logger.Info("services initialized")

	// HTTP-обработчики и маршруты
	router := api.InitRoutes(api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		SportEvent: handlers.NewSportEventHandler(sportEventService),
		Intake:     handlers.NewIntakeHandler(intakeService),
		Review:     handlers.NewReviewHandler(reviewService, joinRequestService),
		Bracket:    handlers.NewBracketHandler(bracketService),
		WebSocket:  handlers.NewWebSocketHandler(wsHub, logger),
	}, cfg.JWTSecretKey)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  time.Minute,
	}

	shutdownErr := make(chan error)
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit
		logger.Info("shutting down server", slog.String("signal", s.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("starting server", slog.String("addr", server.Addr))
	err = server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}

	if err := <-shutdownErr; err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
