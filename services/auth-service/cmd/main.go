package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/sboof911/HyperTube/services/auth-service/internal/config"
	"github.com/sboof911/HyperTube/services/auth-service/internal/handler"
	"github.com/sboof911/HyperTube/services/auth-service/internal/repository"
	"github.com/sboof911/HyperTube/services/auth-service/internal/usecase"
	"github.com/sboof911/HyperTube/shared/auth"
	"github.com/sboof911/HyperTube/shared/provider"
	"github.com/sboof911/HyperTube/shared/validation"
)

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Str("service", "auth-service").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(options.Client().ApplyURI(cfg.MongoDBURI))
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error().Err(err).Msg("failed to disconnect from mongodb")
		}
	}()

	if err := client.Ping(connectCtx, nil); err != nil {
		logger.Fatal().Err(err).Msg("failed to ping mongodb")
	}

	db := client.Database(cfg.DBName)
	userRepo := repository.NewUserMongoRepository(connectCtx, &logger, db)

	jwtAuth, err := auth.NewJWTAuthenticator(cfg.Token.Secret, cfg.Token.Algorithm)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid token configuration")
	}

	google, err := provider.NewGoogleOAuthProvider(
		cfg.Google.ClientID,
		cfg.Google.ClientSecret,
		cfg.Google.RedirectURL,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid google oauth configuration")
	}

	fortyTwo, err := provider.NewFortyTwoOAuthProvider(
		cfg.FortyTwo.ClientID,
		cfg.FortyTwo.ClientSecret,
		cfg.FortyTwo.RedirectURL,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid 42 oauth configuration")
	}

	validate, err := validation.New()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build validator")
	}

	tokenUsecase := usecase.NewTokenUsecase(userRepo, jwtAuth, cfg)
	authUsecase := usecase.NewAuthUsecase(userRepo, tokenUsecase, validate)
	oauthUsecase := usecase.NewOAuthUsecase(
		provider.NewRegistry(google, fortyTwo),
		userRepo,
		authUsecase,
		tokenUsecase,
		&logger,
	)

	authHandler := handler.NewAuthHTTPHandler(authUsecase, oauthUsecase, tokenUsecase, cfg, &logger)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      authHandler.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr()).Msg("auth-service started")

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("auth-service stopped")
}
