package metrics

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetHealthAllHealthy(t *testing.T) {
	RegisterComponent("storage", true, "")
	RegisterComponent("api", true, "")

	health := GetHealth()
	if health.Status != "healthy" {
		t.Errorf("GetHealth() status = %q, want healthy", health.Status)
	}
	if health.Components["storage"] != "healthy" {
		t.Errorf("storage component = %q, want healthy", health.Components["storage"])
	}
	if health.Uptime == "" {
		t.Error("GetHealth() uptime is empty")
	}
}

func TestGetHealthUnhealthyComponent(t *testing.T) {
	RegisterComponent("storage", true, "")
	RegisterComponent("api", false, "listener down")
	defer RegisterComponent("api", true, "")

	health := GetHealth()
	if health.Status != "unhealthy" {
		t.Errorf("GetHealth() status = %q, want unhealthy", health.Status)
	}
}

func TestGetReadiness(t *testing.T) {
	RegisterComponent("storage", true, "")
	RegisterComponent("api", true, "")

	readiness := GetReadiness()
	if readiness.Status != "ready" {
		t.Errorf("GetReadiness() status = %q, want ready", readiness.Status)
	}

	UpdateComponent("storage", false, "database locked")
	defer UpdateComponent("storage", true, "")

	readiness = GetReadiness()
	if readiness.Status != "not_ready" {
		t.Errorf("GetReadiness() status = %q, want not_ready", readiness.Status)
	}
}

func TestHealthHandler(t *testing.T) {
	RegisterComponent("storage", true, "")
	RegisterComponent("api", true, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("HealthHandler() status = %d, want 200", rec.Code)
	}

	var health HealthStatus
	if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if health.Status != "healthy" {
		t.Errorf("health response status = %q, want healthy", health.Status)
	}
}

func TestHealthHandlerUnhealthy(t *testing.T) {
	RegisterComponent("storage", false, "database locked")
	defer RegisterComponent("storage", true, "")
	RegisterComponent("api", true, "")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	HealthHandler()(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("HealthHandler() status = %d, want 503", rec.Code)
	}
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("LivenessHandler() status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode liveness response: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("liveness status = %q, want alive", body["status"])
	}
}
