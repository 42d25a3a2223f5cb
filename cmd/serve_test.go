package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMux_HealthEndpoint(t *testing.T) {
	mux := buildMux(t.TempDir(), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "application/json")

	var body map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestBuildMux_ServesArtifacts(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "averages.json"), []byte(`{"region":{}}`), 0o644))
	mux := buildMux(dir, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/averages.json", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"region":{}}`, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestBuildMux_MissingArtifact(t *testing.T) {
	mux := buildMux(t.TempDir(), []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/nope.json", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestBuildMux_RestrictedOrigin(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{}`), 0o644))
	mux := buildMux(dir, []string{"https://kaart.example.be"})

	req := httptest.NewRequest(http.MethodGet, "/a.json", nil)
	req.Header.Set("Origin", "https://elders.example.com")
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
