package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"firewatch-go/internal/config"
	"firewatch-go/internal/models"
)

func telegramConfig(apiURL string) *config.Config {
	return &config.Config{
		TelegramAPIURL:      apiURL,
		TelegramBotToken:    "test-token",
		TelegramChatID:      "42",
		TelegramTimeout:     time.Second,
		TelegramMaxAttempts: 5,
		TelegramBackoffBase: time.Millisecond,
		TelegramBackoffMax:  5 * time.Millisecond,
		TelegramTimezone:    "UTC",
	}
}

func pendingAlert() *models.Alert {
	return &models.Alert{
		ID:         7,
		Message:    "FIRE DETECTED by AI at camera 'Gate A'. Confidence: 0.93",
		Origin:     models.OriginMLDetection,
		Status:     models.AlertStatusPending,
		SourceKind: models.SourceCamera,
		SourceID:   3,
		CreatedAt:  time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC),
		Zone:       &models.Zone{Name: "Warehouse"},
	}
}

func TestTelegramLogicalFailureNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok": false, "description": "chat not found"}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier(telegramConfig(server.URL), nil)
	notifier.policy.Sleep = func(time.Duration) {}
	notifier.Send(context.Background(), pendingAlert(), "Gate A")

	if got := calls.Load(); got != 1 {
		t.Fatalf("logical failure must not be retried, got %d attempts", got)
	}
}

func TestTelegramTransportFailureRetried(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // every attempt fails at the transport level

	var waits int
	notifier := NewTelegramNotifier(telegramConfig(server.URL), nil)
	notifier.policy.Sleep = func(time.Duration) { waits++ }
	notifier.Send(context.Background(), pendingAlert(), "Gate A")

	if waits != 4 {
		t.Fatalf("expected 4 backoff waits across 5 attempts, got %d", waits)
	}
}

func TestTelegramTransientFailureRecovers(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			conn, _, _ := w.(http.Hijacker).Hijack()
			conn.Close()
			return
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	notifier := NewTelegramNotifier(telegramConfig(server.URL), nil)
	notifier.policy.Sleep = func(time.Duration) {}
	notifier.Send(context.Background(), pendingAlert(), "Gate A")

	if got := calls.Load(); got != 3 {
		t.Fatalf("expected delivery on the third attempt, got %d", got)
	}
}

func TestTelegramSkipsWhenUnconfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected when the bot is not configured")
	}))
	defer server.Close()

	cfg := telegramConfig(server.URL)
	cfg.TelegramBotToken = ""

	notifier := NewTelegramNotifier(cfg, nil)
	notifier.Send(context.Background(), pendingAlert(), "Gate A")
}

func TestTelegramUsesPhotoEndpointForImages(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		r.ParseForm()
		if r.PostForm.Get("photo") != "https://cdn.example.com/snap.jpg" {
			t.Errorf("unexpected photo url %q", r.PostForm.Get("photo"))
		}
		w.Write([]byte(`{"ok": true}`))
	}))
	defer server.Close()

	alert := pendingAlert()
	alert.ImageURL = "https://cdn.example.com/snap.jpg"

	notifier := NewTelegramNotifier(telegramConfig(server.URL), nil)
	notifier.Send(context.Background(), alert, "Gate A")

	if path != "/bottest-token/sendPhoto" {
		t.Fatalf("expected sendPhoto endpoint, got %q", path)
	}
}

func TestBuildMessageIncludesZoneSourceAndTime(t *testing.T) {
	notifier := NewTelegramNotifier(telegramConfig("http://unused"), nil)
	got := notifier.buildMessage(pendingAlert(), "Gate A")

	want := "🔥 *Fire Alert*\nZone: Warehouse\nSource: Gate A (camera)\nTime: 10:00:00 28/08/2026\n\nFIRE DETECTED by AI at camera 'Gate A'. Confidence: 0.93"
	if got != want {
		t.Fatalf("unexpected message:\n got: %q\nwant: %q", got, want)
	}
}
