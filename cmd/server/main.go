package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"roloApp/internal/config"
	locusecase "roloApp/internal/modules/locations/application/usecase"
	locinfra "roloApp/internal/modules/locations/infrastructure"
	loctransport "roloApp/internal/modules/locations/interface"
	postusecase "roloApp/internal/modules/posts/application/usecase"
	postinfra "roloApp/internal/modules/posts/infrastructure"
	posttransport "roloApp/internal/modules/posts/interface"
	rthandler "roloApp/internal/modules/realtime/application/handler"
	rtusecase "roloApp/internal/modules/realtime/application/usecase"
	rtdomain "roloApp/internal/modules/realtime/domain"
	"roloApp/internal/modules/realtime/infrastructure"
	rttransport "roloApp/internal/modules/realtime/interface"
	userusecase "roloApp/internal/modules/users/application/usecase"
	userinfra "roloApp/internal/modules/users/infrastructure"
	usertransport "roloApp/internal/modules/users/interface"
	"roloApp/internal/platform/broker"
	"roloApp/internal/platform/mongodb"
	"roloApp/internal/platform/storage"
	"roloApp/internal/shared/auth"
	"roloApp/internal/shared/logging"
	"roloApp/internal/shared/uploads"
)

func main() {
	// Attempt to load variables from .env so local runs honour configuration tweaks.
	if err := godotenv.Overload(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, ".env load warning: %v\n", err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	logFile, logger, err := setupLogging(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging setup error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	slog.SetDefault(logger)
	slog.Info("logging initialized", slog.String("directory", cfg.Logging.Directory), slog.String("level", cfg.Logging.Level), slog.String("format", cfg.Logging.Format))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Timeout)
	if err != nil {
		slog.Error("mongo connection failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer mongodb.Disconnect(mongoClient)
	db := mongoClient.Database(cfg.Mongo.Database)

	uploader, err := storage.NewCloudinaryStorage(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	if err != nil {
		slog.Error("cloudinary setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	stager, err := uploads.NewStager(cfg.Uploads.Directory, cfg.Uploads.MaxBytes)
	if err != nil {
		slog.Error("upload staging setup failed", slog.Any("error", err))
		os.Exit(1)
	}

	// Realtime core. One hub instance per process, injected everywhere a
	// mutation needs fan-out.
	hub := infrastructure.NewHub()
	publishUC := rtusecase.NewPublishUseCase(hub)
	postPipeline := rtusecase.NewPipeline(publishUC, rtdomain.EntityPost)
	locationPipeline := rtusecase.NewPipeline(publishUC, rtdomain.EntityLocation)

	pollManager := infrastructure.NewPollManager(hub, cfg.Websocket.PollTTL)
	go pollManager.Run(ctx, 10*time.Second)

	// External mutation-event ingress (optional).
	registry := infrastructure.NewHandlerRegistry()
	topics := make([]string, 0, len(cfg.Kafka.Topics))
	for entity, topic := range cfg.Kafka.Topics {
		registry.Register(rthandler.NewMutationStreamHandler(entity, topic, publishUC))
		topics = append(topics, topic)
	}
	broker.StartKafkaConsumers(ctx, registry, cfg.Kafka.Brokers, cfg.Kafka.GroupID, topics)

	// Auth plumbing.
	tokens := auth.NewJWTManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)
	userRepo := userinfra.NewMongoUserRepository(db)
	verifier := userinfra.NewGoogleVerifier(cfg.Google.ClientID)
	authUC := userusecase.NewAuthUseCase(userRepo, verifier, tokens)
	authRequired := usertransport.RequireAuth(tokens, userRepo)

	// Domain modules.
	postRepo := postinfra.NewMongoPostRepository(db)
	locationRepo := locinfra.NewMongoLocationRepository(db)
	postUC := postusecase.NewPostUseCase(postRepo, userRepo, locationRepo, uploader, postPipeline)
	locationUC := locusecase.NewLocationUseCase(locationRepo, userRepo, uploader, locationPipeline)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetOutput(log.Writer())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	api := e.Group("/api")
	usertransport.NewHandler(authUC).Register(api, authRequired)
	posttransport.NewHandler(postUC, stager).Register(api, authRequired)
	loctransport.NewHandler(locationUC, stager).Register(api, authRequired)

	e.GET("/ws", rttransport.NewWebsocketHandler(hub, tokens, cfg.Websocket.DefaultRooms, cfg.Websocket.SendBuffer))
	poll := rttransport.NewPollHandlers(pollManager, cfg.Websocket.DefaultRooms, cfg.Websocket.PollWait)
	e.POST("/realtime/poll", poll.Create)
	e.GET("/realtime/poll/:id", poll.Drain)
	e.DELETE("/realtime/poll/:id", poll.Close)

	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			slog.Error("http server stopped", slog.Any("error", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	slog.Info("shutting down")
	e.Close()
}

func setupLogging(cfg config.LoggingConfig) (*os.File, *slog.Logger, error) {
	dir := cfg.Directory
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	fileName := filepath.Join(dir, time.Now().UTC().Format("2006-01-02")+".log")
	file, err := os.OpenFile(fileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	writer := io.MultiWriter(os.Stdout, file)
	logger := logging.New(writer, logging.Config{
		Level:     cfg.Level,
		Format:    cfg.Format,
		AddSource: true,
	})
	log.SetOutput(writer)
	log.SetFlags(0)
	log.SetPrefix("")

	return file, logger, nil
}
