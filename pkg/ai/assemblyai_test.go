package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/podflow-team/podflow/pkg/config"
)

func TestTranscribeAudio(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/transcripts" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Errorf("missing authorization header")
		}

		var req TranscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.AudioURL != "https://cdn.example.com/ep42.mp3" {
			t.Errorf("unexpected audio url: %s", req.AudioURL)
		}
		if !req.SpeakerLabels {
			t.Errorf("expected speaker labels enabled")
		}
		if req.LanguageCode != "he" {
			t.Errorf("unexpected language code: %s", req.LanguageCode)
		}
		if req.LanguageDetection {
			t.Errorf("language detection should be off when a code is set")
		}
		if req.WebhookAuthHeaderName != WebhookAuthHeaderName || req.WebhookAuthHeaderValue != "s3cret" {
			t.Errorf("unexpected webhook auth header: %s=%s", req.WebhookAuthHeaderName, req.WebhookAuthHeaderValue)
		}

		json.NewEncoder(w).Encode(TranscribeResponse{ID: "tr_123", Status: "queued"})
	}))
	defer server.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	id, err := client.TranscribeAudio(ctx, "https://cdn.example.com/ep42.mp3", "he", "https://api.podflow.io/webhooks/assemblyai", "s3cret", map[string]string{"episode_id": "ep-1"})
	if err != nil {
		t.Fatalf("TranscribeAudio failed: %v", err)
	}
	if id != "tr_123" {
		t.Errorf("expected transcript id tr_123, got %s", id)
	}
}

func TestTranscribeAudioLanguageDetection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req TranscribeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if !req.LanguageDetection {
			t.Errorf("language detection should be on when no code is set")
		}
		json.NewEncoder(w).Encode(TranscribeResponse{ID: "tr_456", Status: "queued"})
	}))
	defer server.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "test-key", BaseURL: server.URL})

	id, err := client.TranscribeAudio(context.Background(), "https://cdn.example.com/ep.mp3", "", "", "", nil)
	if err != nil {
		t.Fatalf("TranscribeAudio failed: %v", err)
	}
	if id != "tr_456" {
		t.Errorf("expected transcript id tr_456, got %s", id)
	}
}

func TestTranscribeAudioServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewAssemblyAIClient(&config.AssemblyAIConfig{APIKey: "bad-key", BaseURL: server.URL})

	if _, err := client.TranscribeAudio(context.Background(), "https://cdn.example.com/ep.mp3", "en", "", "", nil); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
