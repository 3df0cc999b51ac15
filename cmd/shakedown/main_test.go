// SPDX-License-Identifier: MIT

package main

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlagsDefaults(t *testing.T) {
	cfg, err := parseFlags([]string{"http://localhost:8080", "routes"})
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.BaseURL)
	assert.Equal(t, "routes", cfg.ConfigPath)
	assert.Equal(t, 100, cfg.Iterations)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, "output", cfg.OutDir)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestParseFlagsOverrides(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-n", "12", "-c", "3", "-outdir", "findings", "-seed", "42",
		"http://example.com", "targets.yaml",
	})
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.Iterations)
	assert.Equal(t, 3, cfg.Concurrency)
	assert.Equal(t, "findings", cfg.OutDir)
	assert.Equal(t, int64(42), cfg.Seed)
}

func TestParseFlagsVersion(t *testing.T) {
	cfg, err := parseFlags([]string{"-version"})
	require.NoError(t, err)
	assert.True(t, cfg.ShowVersion)
}

func TestParseFlagsErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"missing config path", []string{"http://localhost"}},
		{"extra positional", []string{"http://localhost", "routes", "surplus"}},
		{"zero iterations", []string{"-n", "0", "http://localhost", "routes"}},
		{"negative concurrency", []string{"-c", "-1", "http://localhost", "routes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args)
			assert.Error(t, err)
		})
	}
}

func TestRunRecordsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	routes := filepath.Join(dir, "routes")
	require.NoError(t, os.WriteFile(routes, []byte("GET /ping\n"), 0o644))

	outdir := filepath.Join(dir, "out")
	err := run(Config{
		BaseURL:     srv.URL,
		ConfigPath:  routes,
		Iterations:  5,
		Concurrency: 2,
		OutDir:      outdir,
		Seed:        1,
		Timeout:     5 * time.Second,
	})
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(outdir, "failures.csv"))
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 6) // header + one row per trial
	assert.Equal(t, []string{"method", "uri", "reason"}, rows[0])
	for _, row := range rows[1:] {
		assert.Equal(t, "GET", row[0])
		assert.Equal(t, srv.URL+"/ping", row[1])
		assert.Equal(t, "503", row[2])
	}
}

func TestRunHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	dir := t.TempDir()
	routes := filepath.Join(dir, "routes")
	require.NoError(t, os.WriteFile(routes, []byte("GET /healthz\n"), 0o644))

	dbPath := filepath.Join(dir, "history.db")
	err := run(Config{
		BaseURL:     srv.URL,
		ConfigPath:  routes,
		Iterations:  3,
		Concurrency: 1,
		OutDir:      filepath.Join(dir, "out"),
		Seed:        1,
		Timeout:     5 * time.Second,
		HistoryPath: dbPath,
	})
	require.NoError(t, err)

	_, statErr := os.Stat(dbPath)
	assert.NoError(t, statErr)
}

func TestRunBadConfigPath(t *testing.T) {
	err := run(Config{
		BaseURL:     "http://localhost:1",
		ConfigPath:  filepath.Join(t.TempDir(), "does-not-exist.yaml"),
		Iterations:  1,
		Concurrency: 1,
		OutDir:      t.TempDir(),
		Seed:        1,
		Timeout:     time.Second,
	})
	assert.Error(t, err)
}
