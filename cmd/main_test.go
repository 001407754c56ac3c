package main

import (
	"bytes"
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/flippulse/config"
	"github.com/guttosm/flippulse/internal/app"
)

type dummyHandler struct{}

func (d dummyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestStartServerAndShutdown(t *testing.T) {
	srv := startServer(dummyHandler{}, "0") // random port
	if srv == nil {
		t.Fatalf("expected server")
	}

	// Give server a moment to start
	time.Sleep(50 * time.Millisecond)

	shutdownCtx, c := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer c()
	if err := srv.Shutdown(shutdownCtx); err != nil && err != http.ErrServerClosed {
		t.Fatalf("shutdown err: %v", err)
	}
}

func TestGracefulShutdown_ContextPath(t *testing.T) {
	srv := startServer(dummyHandler{}, "0")

	ctx, cancel := context.WithCancel(context.Background())
	cleaned := make(chan struct{})
	go gracefulShutdown(ctx, srv, func() { close(cleaned) })

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-cleaned:
	case <-time.After(2 * time.Second):
		t.Fatalf("cleanup not called after cancel")
	}
}

func TestParseFlags(t *testing.T) {
	cfg := config.Config{Server: config.ServerConfig{Port: "9090"}}

	cases := []struct {
		name  string
		args  []string
		check func(t *testing.T, o options)
	}{
		{
			name: "defaults",
			args: nil,
			check: func(t *testing.T, o options) {
				if o.mode != "tips" || o.port != "9090" || o.id != -1 {
					t.Fatalf("unexpected defaults: %+v", o)
				}
				if o.threshold != nil || o.random != nil || o.blacklist != nil {
					t.Fatalf("overrides must stay unset: %+v", o)
				}
			},
		},
		{
			name: "explicit zero threshold is an override",
			args: []string{"-threshold", "0", "-blacklist=false", "-random", "2"},
			check: func(t *testing.T, o options) {
				if o.threshold == nil || *o.threshold != 0 {
					t.Fatalf("threshold not set: %+v", o.threshold)
				}
				if o.blacklist == nil || *o.blacklist {
					t.Fatalf("blacklist not disabled: %+v", o.blacklist)
				}
				if o.random == nil || *o.random != 2 {
					t.Fatalf("random not set: %+v", o.random)
				}
			},
		},
		{
			name: "lifecycle flags",
			args: []string{"-mode", "sell", "-id", "3", "-price", "310", "-qty", "50", "-i", "Yew logs"},
			check: func(t *testing.T, o options) {
				if o.mode != "sell" || o.id != 3 || o.price != 310 || o.qty != 50 || o.item != "Yew logs" {
					t.Fatalf("unexpected options: %+v", o)
				}
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			o, err := parseFlags(c.args, cfg)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			c.check(t, o)
		})
	}

	if _, err := parseFlags([]string{"-nope"}, cfg); err == nil {
		t.Fatalf("expected error for unknown flag")
	}
}

func openContainer(t *testing.T) *app.Container {
	t.Helper()
	dir := t.TempDir()
	c, err := app.Open(config.Config{
		Storage: config.StorageConfig{
			Driver:   config.DriverJSON,
			DataFile: filepath.Join(dir, "flips.json"),
		},
		Recommend: config.RecommendConfig{MaxResults: 35, RollingWindow: 10, MinFlips: 10, UseBlacklist: true},
		Scorer:    config.ScorerConfig{Strategy: 2},
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

func runMode(t *testing.T, c *app.Container, args ...string) string {
	t.Helper()
	o, err := parseFlags(args, c.Config)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, run(context.Background(), c, o, &out))
	return out.String()
}

func TestRun_FlipLifecycle(t *testing.T) {
	c := openContainer(t)

	out := runMode(t, c, "-mode", "add", "-i", "Yew logs", "-buy", "270", "-sell", "300", "-qty", "100")
	assert.Contains(t, out, "added flip 0: Yew logs x100")

	out = runMode(t, c, "-mode", "add", "-i", "Magic logs", "-buy", "1000", "-sell", "1100", "-qty", "10", "-account", "alt")
	assert.Contains(t, out, "added flip 1: Magic logs x10")

	out = runMode(t, c, "-mode", "list", "-account", "alt")
	assert.Contains(t, out, "Magic logs")
	assert.NotContains(t, out, "Yew logs")

	out = runMode(t, c, "-mode", "sell", "-id", "0")
	assert.Contains(t, out, "profit 2,400")

	out = runMode(t, c, "-mode", "cancel", "-id", "0")
	assert.Contains(t, out, "cancelled Magic logs x10")

	out = runMode(t, c, "-mode", "list")
	assert.Contains(t, out, "no active flips")

	out = runMode(t, c, "-mode", "stats")
	assert.Contains(t, out, "Yew logs")
	assert.Contains(t, out, "total profit 2,400")

	for _, sort := range []string{"roi", "recommendation", "tips"} {
		out = runMode(t, c, "-mode", "stats", "-sort", sort)
		assert.Contains(t, out, "Yew logs", "sort %s", sort)
	}
	assert.Contains(t, runMode(t, c, "-mode", "stats", "-sort", "tips"), "sorted by recommendation")

	out = runMode(t, c, "-mode", "item", "-i", "Yew logs")
	assert.Contains(t, out, "Yew logs: 1 flips")
	assert.Contains(t, out, "done")

	out = runMode(t, c, "-mode", "repair")
	assert.Contains(t, out, "flip log is consistent")

	out = runMode(t, c, "-mode", "export")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "item;buy;sell;sold;limit;cancelled;done;account", lines[0])
}

func TestRun_DeclinesOnSmallLogs(t *testing.T) {
	c := openContainer(t)

	assert.Contains(t, runMode(t, c, "-mode", "tips"), "no recommendations yet")
	assert.Contains(t, runMode(t, c, "-mode", "optimize"), "cannot optimize")
}

func TestRun_Errors(t *testing.T) {
	c := openContainer(t)

	cases := []struct {
		name string
		args []string
	}{
		{"unknown mode", []string{"-mode", "nope"}},
		{"item without name", []string{"-mode", "item"}},
		{"bad sort", []string{"-mode", "stats", "-sort", "volume"}},
		{"bad algorithm", []string{"-mode", "tips", "-algorithm", "3"}},
		{"sell unknown id", []string{"-mode", "sell", "-id", "7"}},
		{"invalid flip", []string{"-mode", "add", "-i", "Yew logs"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			o, err := parseFlags(tc.args, c.Config)
			require.NoError(t, err)
			if err := run(context.Background(), c, o, &bytes.Buffer{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCalc(t *testing.T) {
	var out bytes.Buffer
	calc(&out, 300, 270, 100)

	s := out.String()
	for _, want := range []string{"271", "299", "margin", "22", "8.15%", "2,200"} {
		if !strings.Contains(s, want) {
			t.Fatalf("missing %q in:\n%s", want, s)
		}
	}
}
