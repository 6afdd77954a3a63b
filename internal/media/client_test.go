package media

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/config"
	"github.com/YogeshJat8965/SwastikMotorsUjjain-sub001/internal/common/middleware"
)

func newTestClient(endpoint string, maxFailures int) *Client {
	return NewClient(config.MediaConfig{
		Endpoint:       endpoint,
		APIKey:         "test-key",
		TimeoutSeconds: 5,
		MaxFailures:    maxFailures,
	})
}

func TestUploadReturnsHostedURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"url":"https://img.example.com/abc.jpg"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	url, err := c.Upload(context.Background(), "photo.jpg", strings.NewReader("fake-bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if url != "https://img.example.com/abc.jpg" {
		t.Fatalf("unexpected url: %s", url)
	}
}

func TestUploadRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 5)
	_, err := c.Upload(context.Background(), "photo.jpg", strings.NewReader("x"))
	if !errors.Is(err, ErrUploadRejected) {
		t.Fatalf("expected ErrUploadRejected, got %v", err)
	}
}

// 连续失败达到阈值后熔断器打开，后续调用不再打到托管方。
func TestUploadCircuitOpensAfterFailures(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL, 2)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := c.Upload(ctx, "photo.jpg", strings.NewReader("x")); err == nil {
			t.Fatal("expected failure")
		}
	}
	hitsBefore := hits
	_, err := c.Upload(ctx, "photo.jpg", strings.NewReader("x"))
	if !errors.Is(err, middleware.ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
	if hits != hitsBefore {
		t.Fatal("open circuit must not forward requests")
	}
}

func TestValidateURL(t *testing.T) {
	if err := ValidateURL("https://img.example.com/a.jpg"); err != nil {
		t.Fatalf("valid url rejected: %v", err)
	}
	for _, bad := range []string{"", "ftp://img.example.com/a.jpg", "not-a-url", "https://"} {
		if err := ValidateURL(bad); err == nil {
			t.Fatalf("invalid url accepted: %q", bad)
		}
	}
}
