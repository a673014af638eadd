package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error {
	return p.err
}

func TestHealthLive(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp := httptest.NewRecorder()
	HealthLive().ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestHealthReadyAllHealthy(t *testing.T) {
	t.Parallel()

	handler := HealthReady(nil, map[string]Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{},
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var envelope struct {
		Data struct {
			Status string            `json:"status"`
			Checks map[string]string `json:"checks"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Status != "ready" {
		t.Fatalf("expected status ready, got %q", envelope.Data.Status)
	}
	if envelope.Data.Checks["database"] != "ok" || envelope.Data.Checks["redis"] != "ok" {
		t.Fatalf("unexpected checks: %v", envelope.Data.Checks)
	}
}

func TestHealthReadyDependencyDown(t *testing.T) {
	t.Parallel()

	handler := HealthReady(nil, map[string]Pinger{
		"database": stubPinger{},
		"redis":    stubPinger{err: errors.New("connection refused")},
	})

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Error.Code != "DEPENDENCY_ERROR" {
		t.Fatalf("expected DEPENDENCY_ERROR, got %q", envelope.Error.Code)
	}
	if envelope.Error.Details["database"] != "ok" {
		t.Fatalf("expected database ok, got %v", envelope.Error.Details)
	}
	if envelope.Error.Details["redis"] != "connection refused" {
		t.Fatalf("expected redis failure recorded, got %v", envelope.Error.Details)
	}
}
