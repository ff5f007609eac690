package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/juniorseniors/users-api/internal/api/metrics"
	"github.com/juniorseniors/users-api/internal/core/domain"
	"github.com/juniorseniors/users-api/internal/core/ports"
)

// AvatarSize is the edge length, in pixels, every avatar is resized to.
const AvatarSize = 250

// ProfileService implements subscription and avatar updates.
type ProfileService struct {
	repo    ports.UserRepository
	store   ports.AvatarStore
	resizer ports.ImageResizer
	log     zerolog.Logger
}

func NewProfileService(
	repo ports.UserRepository,
	store ports.AvatarStore,
	resizer ports.ImageResizer,
	log zerolog.Logger,
) *ProfileService {
	return &ProfileService{repo: repo, store: store, resizer: resizer, log: log}
}

func (s *ProfileService) UpdateSubscription(ctx context.Context, userID string, sub domain.Subscription) (*domain.User, error) {
	if !sub.Valid() {
		return nil, domain.ErrInvalidSubscription
	}

	user, err := s.repo.UpdateSubscription(ctx, userID, sub)
	if err != nil {
		return nil, fmt.Errorf("update subscription: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("subscription", string(sub)).Msg("subscription updated")
	return user, nil
}

// UpdateAvatar resizes a staged upload, moves it to permanent storage and
// records its URL. The staged file is removed whenever processing fails.
func (s *ProfileService) UpdateAvatar(ctx context.Context, userID string, upload ports.AvatarUpload) (url string, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			removeStaged(upload.TempPath, s.log)
			metrics.AvatarUpdatesTotal.WithLabelValues(metrics.ResultFailure).Inc()
			return
		}
		metrics.AvatarUpdatesTotal.WithLabelValues(metrics.ResultSuccess).Inc()
		metrics.AvatarProcessingDuration.Observe(time.Since(start).Seconds())
	}()

	name, err := avatarName(userID, upload.OriginalName)
	if err != nil {
		return "", err
	}

	if err := s.resizer.Resize(upload.TempPath, AvatarSize, AvatarSize); err != nil {
		return "", fmt.Errorf("update avatar: resize: %w", err)
	}

	url, err = s.store.Store(ctx, name, upload.TempPath)
	if err != nil {
		return "", fmt.Errorf("update avatar: store: %w", err)
	}

	if err := s.repo.UpdateAvatarURL(ctx, userID, url); err != nil {
		return "", fmt.Errorf("update avatar: %w", err)
	}

	s.log.Info().Str("user_id", userID).Str("avatar_url", url).Msg("avatar updated")
	return url, nil
}

// avatarName keys the stored file by user id, keeping the upload's extension.
func avatarName(userID, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	if ext == "" || ext == "." {
		return "", domain.ErrAvatarExtension
	}
	return userID + ext, nil
}

func removeStaged(path string, log zerolog.Logger) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("path", path).Msg("failed to remove staged upload")
	}
}
