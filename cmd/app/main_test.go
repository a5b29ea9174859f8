package main

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/filipal/fitspace-backend-radno/internal/config"
)

func TestPreflightOptionsAnsweredByCORSMiddleware(t *testing.T) {
	app := newApp(config.Config{Environment: "test"}, nil, nil)

	req := httptest.NewRequest("OPTIONS", "/api/v1/users", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 204 {
		t.Fatalf("expected 204 got %d", res.StatusCode)
	}
	if res.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected wildcard allow-origin, got %q", res.Header.Get("Access-Control-Allow-Origin"))
	}
}

func TestPlainOptionsGetsAcknowledgement(t *testing.T) {
	app := newApp(config.Config{Environment: "test"}, nil, nil)

	res, err := app.Test(httptest.NewRequest("OPTIONS", "/api/v1/users", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	data := body["data"].(map[string]any)
	if data["message"] != "CORS preflight" {
		t.Fatalf("unexpected message: %v", data["message"])
	}
}

func TestAPIGatedWhenDatabaseUnavailable(t *testing.T) {
	app := newApp(config.Config{Environment: "test"}, nil, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/users", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 503 {
		t.Fatalf("expected 503 got %d", res.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Database connection required but not available" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}

func TestStatusAnswersWhileDegraded(t *testing.T) {
	app := newApp(config.Config{Environment: "test"}, nil, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/status", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 200 {
		t.Fatalf("expected 200 got %d", res.StatusCode)
	}
}

func TestUnknownRouteNamesMethodAndPath(t *testing.T) {
	app := newApp(config.Config{Environment: "test"}, nil, nil)

	res, err := app.Test(httptest.NewRequest("GET", "/nope", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if res.StatusCode != 404 {
		t.Fatalf("expected 404 got %d", res.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["error"] != "Route not found: GET /nope" {
		t.Fatalf("unexpected message: %v", body["error"])
	}
}
