package upload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snap.jpg")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	return path
}

func TestUploadSendsMultipartForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
			return
		}
		if r.FormValue("folder") != "firewatch/snapshots" {
			t.Errorf("unexpected folder %q", r.FormValue("folder"))
		}
		if r.FormValue("public_id") != "camera_3_1700000000" {
			t.Errorf("unexpected public_id %q", r.FormValue("public_id"))
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("missing file part: %v", err)
			return
		}
		defer file.Close()
		if header.Filename != "snap.jpg" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		w.Write([]byte(`{"url": "https://cdn.example.com/snap.jpg", "public_id": "camera_3_1700000000"}`))
	}))
	defer server.Close()

	svc := NewService(server.URL, "firewatch/snapshots", server.Client())
	result := svc.Upload(context.Background(), writeFile(t, "img"), "camera_3_1700000000")

	if !result.Success {
		t.Fatalf("expected success, got %s", result.Err)
	}
	if result.URL != "https://cdn.example.com/snap.jpg" {
		t.Fatalf("unexpected url %q", result.URL)
	}
	if result.PublicID != "camera_3_1700000000" {
		t.Fatalf("unexpected public id %q", result.PublicID)
	}
}

func TestUploadRemoteError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInsufficientStorage)
		w.Write([]byte(`{"message": "bucket full"}`))
	}))
	defer server.Close()

	svc := NewService(server.URL, "firewatch/snapshots", server.Client())
	result := svc.Upload(context.Background(), writeFile(t, "img"), "")

	if result.Success {
		t.Fatal("expected failure")
	}
	if result.Err != "bucket full" {
		t.Fatalf("expected remote message, got %q", result.Err)
	}
}

func TestUploadMissingFile(t *testing.T) {
	svc := NewService("http://127.0.0.1:0", "firewatch/snapshots", nil)
	result := svc.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), "")

	if result.Success {
		t.Fatal("expected failure for a missing local file")
	}
}
