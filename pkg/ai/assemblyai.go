package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/podflow-team/podflow/pkg/config"
)

// AssemblyAIClient is a minimal AssemblyAI client used for webhook-driven
// transcription submission. Transcript retrieval goes through the official
// SDK; this wrapper exists for the submit path where we control the payload.
type AssemblyAIClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewAssemblyAIClient creates an AssemblyAI client using the provided config.
// If cfg is nil, falls back to environment variables.
func NewAssemblyAIClient(cfg *config.AssemblyAIConfig) *AssemblyAIClient {
	var apiKey, baseURL string
	if cfg != nil {
		apiKey = cfg.APIKey
		baseURL = cfg.BaseURL
	}
	if apiKey == "" {
		apiKey = os.Getenv("ASSEMBLYAI_API_KEY")
	}
	if baseURL == "" {
		baseURL = "https://api.assemblyai.com"
	}
	return &AssemblyAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// WebhookAuthHeaderName is echoed back by the provider on webhook delivery,
// carrying the shared secret set at submission.
const WebhookAuthHeaderName = "X-Webhook-Secret"

// TranscribeRequest is payload for /v2/transcripts
type TranscribeRequest struct {
	AudioURL               string            `json:"audio_url"`
	SpeakerLabels          bool              `json:"speaker_labels,omitempty"`
	LanguageCode           string            `json:"language_code,omitempty"`
	LanguageDetection      bool              `json:"language_detection,omitempty"`
	WebhookURL             string            `json:"webhook_url,omitempty"`
	WebhookAuthHeaderName  string            `json:"webhook_auth_header_name,omitempty"`
	WebhookAuthHeaderValue string            `json:"webhook_auth_header_value,omitempty"`
	Metadata               map[string]string `json:"metadata,omitempty"`
}

// TranscribeResponse is minimal response
type TranscribeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// TranscribeAudio requests AssemblyAI to transcribe an external audio URL with
// word-level timestamps and speaker diarization. Returns the transcript job id.
func (c *AssemblyAIClient) TranscribeAudio(ctx context.Context, recordingURL, languageCode, webhookURL, webhookSecret string, metadata map[string]string) (string, error) {
	payload := TranscribeRequest{
		AudioURL:          recordingURL,
		SpeakerLabels:     true,
		LanguageCode:      languageCode,
		LanguageDetection: languageCode == "",
		WebhookURL:        webhookURL,
		Metadata:          metadata,
	}
	if webhookSecret != "" {
		payload.WebhookAuthHeaderName = WebhookAuthHeaderName
		payload.WebhookAuthHeaderValue = webhookSecret
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/transcripts", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("assemblyai returned status %d", resp.StatusCode)
	}

	var tr TranscribeResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", err
	}
	return tr.ID, nil
}
