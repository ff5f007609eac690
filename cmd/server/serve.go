package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/juniorseniors/users-api/internal/api"
	"github.com/juniorseniors/users-api/internal/core/ports"
	"github.com/juniorseniors/users-api/internal/core/service"
	"github.com/juniorseniors/users-api/internal/infrastructure/db/memory"
	mongodb "github.com/juniorseniors/users-api/internal/infrastructure/db/mongo"
	"github.com/juniorseniors/users-api/internal/infrastructure/http/handlers"
	"github.com/juniorseniors/users-api/internal/infrastructure/imaging"
	"github.com/juniorseniors/users-api/internal/infrastructure/mail"
	"github.com/juniorseniors/users-api/internal/infrastructure/storage"
	"github.com/juniorseniors/users-api/internal/infrastructure/upload"
	"github.com/juniorseniors/users-api/internal/pkg/config"
	"github.com/juniorseniors/users-api/pkg/logger"
)

const (
	serviceName     = "users-api"
	shutdownTimeout = 10 * time.Second
)

func serve(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
	})

	checks := map[string]handlers.Check{}

	repo, closeStore, err := openStore(ctx, cfg, checks, log)
	if err != nil {
		return err
	}
	defer closeStore()

	mailer, err := mail.New(mail.Config{
		Driver:         cfg.Mail.Driver,
		From:           cfg.Mail.From,
		FromName:       cfg.Mail.FromName,
		SendGridAPIKey: cfg.Mail.SendGridAPIKey,
		SMTP: mail.SMTPConfig{
			Host:     cfg.Mail.SMTPHost,
			Port:     cfg.Mail.SMTPPort,
			Username: cfg.Mail.SMTPUsername,
			Password: cfg.Mail.SMTPPassword,
		},
	}, logger.Component("mail"))
	if err != nil {
		return err
	}

	avatars, avatarDir, err := openAvatarStore(ctx, cfg)
	if err != nil {
		return err
	}

	stager, err := upload.NewStager(cfg.Upload.TempDir, cfg.Upload.MaxBytes)
	if err != nil {
		return err
	}
	checks["uploads"] = handlers.DirCheck(stager.Dir())

	sweeper := upload.NewSweeper(stager.Dir(), cfg.Upload.SweepMaxAge, logger.Component("upload"))
	if err := sweeper.Start(cfg.Upload.SweepSchedule); err != nil {
		return err
	}
	defer sweeper.Stop()

	tokens := service.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	accounts := service.NewAccountService(repo, mailer, tokens, cfg.AppBaseURL, logger.Component("accounts"))
	profiles := service.NewProfileService(repo, avatars, imaging.NewResizer(), logger.Component("profiles"))

	e := api.NewRouter(api.Deps{
		Accounts:         accounts,
		Profiles:         profiles,
		Stager:           stager,
		AvatarDir:        avatarDir,
		AvatarPublicPath: cfg.Avatar.PublicPath,
		MaxUploadBytes:   cfg.Upload.MaxBytes,
		ReadinessChecks:  checks,
		Log:              log,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Info().
			Str("addr", addr).
			Str("store", cfg.Store.Driver).
			Str("mail", cfg.Mail.Driver).
			Str("avatars", cfg.Avatar.Store).
			Msg("http server listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("server stopping...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// openStore returns the user repository selected by STORE_DRIVER and
// registers its readiness check.
func openStore(ctx context.Context, cfg *config.Config, checks map[string]handlers.Check, log zerolog.Logger) (ports.UserRepository, func(), error) {
	if cfg.Store.Driver == "memory" {
		log.Warn().Msg("using in-memory user store; accounts are lost on restart")
		return memory.NewUserRepository(), func() {}, nil
	}

	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}

	repo := mongodb.NewUserRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("ensure indexes: %w", err)
	}
	checks["mongodb"] = handlers.MongoCheck(db)

	return repo, closeFn, nil
}

// openAvatarStore returns the avatar store selected by AVATAR_STORE and the
// local directory to serve statically, if any.
func openAvatarStore(ctx context.Context, cfg *config.Config) (ports.AvatarStore, string, error) {
	if cfg.Avatar.Store == "s3" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
			PublicURL:       cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return store, "", nil
	}

	store, err := storage.NewLocalStore(cfg.Avatar.Dir, cfg.Avatar.PublicPath)
	if err != nil {
		return nil, "", err
	}
	return store, cfg.Avatar.Dir, nil
}
