package handler

import (
	"io"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/podflow-team/podflow/errors"
	episodeuse "github.com/podflow-team/podflow/internal/usecase/episode"
	pkgai "github.com/podflow-team/podflow/pkg/ai"
)

// WebhookHandler handles incoming webhooks from the transcription provider
type WebhookHandler struct {
	svc    episodeuse.Service
	logger *zap.Logger
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(svc episodeuse.Service, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{svc: svc, logger: logger}
}

// HandleAssemblyAI receives transcription status webhooks from AssemblyAI.
// The provider echoes back the auth header configured at submission time; the
// service rejects deliveries with a missing or wrong value.
func (h *WebhookHandler) HandleAssemblyAI(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidPayload())
	}

	authToken := c.Request().Header.Get(pkgai.WebhookAuthHeaderName)
	if authToken == "" {
		authToken = c.Request().Header.Get("Authorization")
	}

	if err := h.svc.HandleTranscriptionWebhook(c.Request().Context(), body, authToken); err != nil {
		if h.logger != nil {
			h.logger.Error("transcription webhook error", zap.Error(err))
		}
		return HandleError(h.logger, c, errors.ErrProcessingFailed(err))
	}
	return HandleSuccess(h.logger, c, map[string]interface{}{"status": "ok"})
}
