package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestWebhookDeliverySucceeds(t *testing.T) {
	e := newTestEcho()
	h := NewWebhookHandler(&stubService{}, nil)

	body := `{"transcript_id": "abc123", "status": "completed"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/assemblyai", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("X-Webhook-Secret", "s3cret")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleAssemblyAI(c); err != nil {
		t.Fatalf("HandleAssemblyAI: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestWebhookServiceErrorReturns500(t *testing.T) {
	e := newTestEcho()
	h := NewWebhookHandler(&stubService{webhookErr: errors.New("invalid webhook auth token")}, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/assemblyai", strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.HandleAssemblyAI(c); err != nil {
		t.Fatalf("HandleAssemblyAI: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
