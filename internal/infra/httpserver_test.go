package infra

import (
	"net/http"
	"testing"
	"time"
)

func TestNewHTTPServerFloorsWriteTimeout(t *testing.T) {
	cfg := &Config{
		Port:             "8080",
		HTTPWriteTimeout: 30 * time.Second,
		MusicPollBudget:  120 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	if got, want := srv.server.WriteTimeout, 135*time.Second; got != want {
		t.Fatalf("WriteTimeout = %v, want %v", got, want)
	}
}

func TestNewHTTPServerKeepsAmpleWriteTimeout(t *testing.T) {
	cfg := &Config{
		Port:             "8080",
		HTTPWriteTimeout: 180 * time.Second,
		MusicPollBudget:  120 * time.Second,
	}
	srv := NewHTTPServer(cfg, http.NotFoundHandler())
	if got, want := srv.server.WriteTimeout, 180*time.Second; got != want {
		t.Fatalf("WriteTimeout = %v, want %v", got, want)
	}
}
