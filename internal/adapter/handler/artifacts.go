package handler

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/podflow-team/podflow/errors"
	"github.com/podflow-team/podflow/internal/infrastructure/storage"
)

// ArtifactHandler serves download links for the report bundles the pipeline
// writes to object storage.
type ArtifactHandler struct {
	minioClient *storage.MinIOClient
	logger      *zap.Logger
}

// NewArtifactHandler creates a new artifact handler
func NewArtifactHandler(minioClient *storage.MinIOClient, logger *zap.Logger) *ArtifactHandler {
	return &ArtifactHandler{minioClient: minioClient, logger: logger}
}

// ListArtifacts lists the artifact files stored for an episode with presigned
// download URLs.
func (h *ArtifactHandler) ListArtifacts(c echo.Context) error {
	ctx := c.Request().Context()

	episodeID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument("invalid episode ID"))
	}

	prefix := fmt.Sprintf("artifacts/%s/", episodeID)
	files, err := h.minioClient.ListFiles(ctx, prefix)
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to list artifacts",
				zap.String("episode_id", episodeID.String()),
				zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrStorageFailed("list", err))
	}

	artifacts := make([]map[string]string, 0, len(files))
	for _, f := range files {
		url, err := h.minioClient.GetFileURL(ctx, f, 1*time.Hour)
		if err != nil {
			if h.logger != nil {
				h.logger.Warn("failed to generate artifact URL",
					zap.String("object_name", f),
					zap.Error(err))
			}
			continue
		}
		artifacts = append(artifacts, map[string]string{
			"object_name": f,
			"url":         url,
		})
	}

	return HandleSuccess(h.logger, c, map[string]interface{}{
		"episode_id": episodeID.String(),
		"artifacts":  artifacts,
		"count":      len(artifacts),
	})
}
