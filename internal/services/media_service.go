package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joshua-takyi/rentinout/internal/metrics"
	"github.com/joshua-takyi/rentinout/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

// MediaDeleter removes an asset from the media host by its provider id.
type MediaDeleter interface {
	DeleteImage(ctx context.Context, imgID string) error
}

// MediaService counts and logs every deletion sent to the media host.
type MediaService struct {
	media   MediaDeleter
	results *prometheus.CounterVec
	logger  *slog.Logger
}

func NewMediaService(media MediaDeleter, results *prometheus.CounterVec, logger *slog.Logger) *MediaService {
	if logger == nil {
		logger = slog.Default()
	}
	return &MediaService{media: media, results: results, logger: logger}
}

func (ms *MediaService) DeleteImage(ctx context.Context, imgID string) error {
	imgID = strings.TrimSpace(imgID)
	if imgID == "" {
		return models.NewValidationError("img_id", "required", "img_id is required")
	}

	err := ms.media.DeleteImage(ctx, imgID)
	if ms.results != nil {
		ms.results.WithLabelValues(metrics.Result(err)).Inc()
	}
	if err != nil {
		ms.logger.Error("Media delete failed", "img_id", imgID, "error", err)
		return err
	}
	return nil
}

// DeleteImages attempts every id and returns the ones that failed.
func (ms *MediaService) DeleteImages(ctx context.Context, imgIDs []string) []string {
	failed := []string{}
	for _, id := range imgIDs {
		if id == "" {
			continue
		}
		if err := ms.DeleteImage(ctx, id); err != nil {
			failed = append(failed, id)
		}
	}
	return failed
}
