package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Kengston/banhBao/internal/config"
	"github.com/Kengston/banhBao/internal/server"
)

func testConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:    ":0",
		WebhookSecret: "s3cret",
	}
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	srv := server.New(nil, testConfig(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); !strings.Contains(body, `"ok":true`) {
		t.Errorf("body = %q, want ok marker", body)
	}
}

func TestWebhook_BadSecretForbidden(t *testing.T) {
	t.Parallel()

	called := false
	srv := server.New(nil, testConfig(), func(http.ResponseWriter, *http.Request) {
		called = true
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/wrong", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
	if called {
		t.Error("webhook handler invoked despite bad secret")
	}
}

func TestWebhook_GoodSecretDelegates(t *testing.T) {
	t.Parallel()

	called := false
	srv := server.New(nil, testConfig(), func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/webhook/s3cret", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if !called {
		t.Error("webhook handler not invoked")
	}
}

func TestWebhook_NotMountedWithoutHandler(t *testing.T) {
	t.Parallel()

	srv := server.New(nil, testConfig(), nil)

	req := httptest.NewRequest(http.MethodPost, "/webhook/s3cret", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code == http.StatusOK {
		t.Error("webhook route mounted in polling mode")
	}
}
