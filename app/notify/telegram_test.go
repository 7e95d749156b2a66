package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTelegramClient_Send(t *testing.T) {
	var got sendMessageRequest
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer server.Close()

	client := NewTelegramClient(server.Client(), server.URL, "123:abc")
	if err := client.Send(context.Background(), "@channel", "hello"); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if gotPath != "/bot123:abc/sendMessage" {
		t.Errorf("Unexpected path %q", gotPath)
	}
	if got.ChatID != "@channel" || got.Text != "hello" {
		t.Errorf("Unexpected payload: %+v", got)
	}
}

func TestTelegramClient_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantRetry  time.Duration
		wantStatus int
	}{
		{
			name:      "flood control with retry_after",
			status:    http.StatusTooManyRequests,
			body:      `{"ok":false,"error_code":429,"description":"Too Many Requests: retry after 7","parameters":{"retry_after":7}}`,
			wantRetry: 7 * time.Second,
		},
		{
			name:      "flood control without retry_after",
			status:    http.StatusTooManyRequests,
			body:      `{"ok":false,"error_code":429,"description":"Too Many Requests"}`,
			wantRetry: time.Second,
		},
		{
			name:       "429 without parameters",
			status:     http.StatusTooManyRequests,
			body:       `not json`,
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "chat not found",
			status:     http.StatusBadRequest,
			body:       `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewTelegramClient(server.Client(), server.URL, "token")
			err := client.Send(context.Background(), "@channel", "hello")
			if err == nil {
				t.Fatal("Expected an error")
			}

			var retryErr *RetryAfterError
			if tt.wantRetry > 0 {
				if !errors.As(err, &retryErr) {
					t.Fatalf("Expected RetryAfterError, got %v", err)
				}
				if retryErr.After != tt.wantRetry {
					t.Errorf("Expected retry after %v, got %v", tt.wantRetry, retryErr.After)
				}
				return
			}

			if errors.As(err, &retryErr) {
				t.Fatalf("Did not expect RetryAfterError, got %v", err)
			}
			var apiErr *APIError
			if !errors.As(err, &apiErr) || apiErr.StatusCode != tt.wantStatus {
				t.Errorf("Expected APIError with status %d, got %v", tt.wantStatus, err)
			}
		})
	}
}
