// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 CargoLog Contributors

package observability

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/cargolog/cargolog/internal/event"
)

func startServer(t *testing.T, ready ReadinessChecker) *Server {
	t.Helper()
	server := NewServer("127.0.0.1:0", ready)
	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Stop(ctx)
	})
	return server
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("failed to GET %s: %v", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	server := startServer(t, func() bool { return true })

	addr := server.Addr()
	if addr == "" {
		t.Fatal("server address is empty")
	}

	status, body := get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}

	// Check for Prometheus format indicators
	if !strings.Contains(body, "# HELP") {
		t.Error("expected Prometheus format with HELP comments")
	}
	if !strings.Contains(body, "# TYPE") {
		t.Error("expected Prometheus format with TYPE comments")
	}

	// Check for standard Go and process metrics
	if !strings.Contains(body, "go_") {
		t.Error("expected go_* metrics")
	}
	if !strings.Contains(body, "process_") {
		t.Error("expected process_* metrics")
	}

	// The engine's own metrics are registered too
	if !strings.Contains(body, "cargolog_watched_entities") {
		t.Error("expected cargolog_watched_entities metric")
	}

	// Vector metrics appear once a label has been used
	event.EventsEmitted.WithLabelValues("take").Inc()
	status, body = get(t, "http://"+addr+"/metrics")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if !strings.Contains(body, "cargolog_events_emitted_total") {
		t.Error("expected cargolog_events_emitted_total metric")
	}
}

func TestServer_LivenessReturns200(t *testing.T) {
	server := startServer(t, nil)

	status, body := get(t, "http://"+server.Addr()+"/healthz/liveness")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
}

func TestServer_ReadinessFollowsChecker(t *testing.T) {
	ready := false
	server := startServer(t, func() bool { return ready })

	status, _ := get(t, "http://"+server.Addr()+"/healthz/readiness")
	if status != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", status)
	}

	ready = true
	status, body := get(t, "http://"+server.Addr()+"/healthz/readiness")
	if status != http.StatusOK {
		t.Errorf("expected status 200, got %d", status)
	}
	if strings.TrimSpace(body) != "ok" {
		t.Errorf("expected body 'ok', got %q", body)
	}
}

func TestServer_DoubleStartFails(t *testing.T) {
	server := startServer(t, nil)

	if _, err := server.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}

func TestServer_StopLeavesNoGoroutines(t *testing.T) {
	// Drop keep-alive connections left over from other tests' probes.
	http.DefaultClient.CloseIdleConnections()
	defer goleak.VerifyNone(t)

	server := NewServer("127.0.0.1:0", nil)
	if _, err := server.Start(); err != nil {
		t.Fatalf("failed to start server: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		t.Fatalf("failed to stop server: %v", err)
	}
}
