package main

import (
	"context"
	"crypto/rand"
	"log"
	"net/http"

	"github.com/tandemplan/tandem-backend/internal/api"
	conflicts_service "github.com/tandemplan/tandem-backend/internal/business/conflicts"
	events_service "github.com/tandemplan/tandem-backend/internal/business/events"
	"github.com/tandemplan/tandem-backend/internal/config"
	"github.com/tandemplan/tandem-backend/internal/database"
	"github.com/tandemplan/tandem-backend/internal/database/events"
	"github.com/tandemplan/tandem-backend/internal/database/group"
	"github.com/tandemplan/tandem-backend/internal/database/resolutions"
	"github.com/tandemplan/tandem-backend/internal/database/user"
	"github.com/tandemplan/tandem-backend/internal/notifications"
	"github.com/tandemplan/tandem-backend/internal/pkg/fcm"
	"github.com/tandemplan/tandem-backend/internal/pkg/jwt"
	"github.com/tandemplan/tandem-backend/internal/pkg/oauth"
	"github.com/tandemplan/tandem-backend/internal/redis"
	"github.com/xlab/closer"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx := context.Background()

	logger, err := initLogger()
	if err != nil {
		log.Fatalf("unable to initialize logger: %v", err)
	}

	jwts := jwt.NewManger()
	tokenParser := oauth.NewParser()

	redisPool := redis.NewRedisPool(logger)
	refreshTokens := redis.NewRefreshTokenRepository(redisPool, logger)
	ignoredConflicts := redis.NewIgnoredConflictsRepository(redisPool, logger)

	db, err := database.NewPGX(ctx)
	if err != nil {
		log.Fatalf("unable to initialize db: %v", err)
	}
	usersRepository := user.NewRepository()
	groupsRepository := group.NewRepository()
	eventsRepository := events.NewRepository()
	resolutionsRepository := resolutions.NewRepository()

	eventsService := events_service.NewService(db, eventsRepository)
	conflictsService := conflicts_service.NewService(
		db,
		logger,
		eventsService,
		groupsRepository,
		resolutionsRepository,
		ignoredConflicts,
	)

	fcmService, err := fcm.NewService(ctx)
	if err != nil {
		log.Fatalf("unable to initialize fcm service: %v", err)
	}

	sender := notifications.NewSender(
		db,
		logger,
		groupsRepository,
		usersRepository,
		eventsService,
		conflictsService,
		ignoredConflicts,
		fcmService,
	)
	go sender.Start(ctx)

	api, err := api.NewApi(
		logger,
		rand.Reader,
		jwts,
		tokenParser,
		refreshTokens,
		db,
		usersRepository,
		groupsRepository,
		eventsService,
		conflictsService,
	)
	if err != nil {
		log.Fatalf("unable to initialize api: %v", err)
	}

	errLogger, err := zap.NewStdLogAt(logger.Desugar(), zap.ErrorLevel)
	if err != nil {
		logger.Fatalw("error initiating server logger", "err", err)
	}

	server := &http.Server{
		Addr:     ":" + config.Port(),
		Handler:  api,
		ErrorLog: errLogger,
	}

	logger.Infow("Started server", "port", config.Port())
	logger.Fatalw("server error", "err", server.ListenAndServe())
}

func initLogger() (*zap.SugaredLogger, error) {
	var logger *zap.Logger
	var err error

	if config.Production() {
		logger, err = zap.NewProduction()
	} else {
		conf := zap.NewDevelopmentConfig()
		conf.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err = conf.Build()
	}

	if err != nil {
		return nil, err
	}

	closer.Bind(func() {
		_ = logger.Sync()
	})

	return logger.Sugar(), nil
}
