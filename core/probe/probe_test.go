package probe

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/qascope/qascope/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serverPort(t *testing.T, srv *httptest.Server) (string, int) {
	t.Helper()
	host, portStr, err := net.SplitHostPort(srv.Listener.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port
}

func TestProbe_Accessible(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<!doctype html><html><head><title> Dev App </title>
<meta charset="utf-8"><script src="/_next/static/main.js"></script></head>
<body><div id="__next" data-reactroot></div></body></html>`))
	}))
	defer srv.Close()

	host, port := serverPort(t, srv)
	report := Probe(context.Background(), host, port, "health", time.Second)

	assert.Equal(t, schema.Accessible, report.State)
	assert.Equal(t, http.StatusOK, report.StatusCode)
	assert.Equal(t, "/health", report.Path)
	assert.Equal(t, "Dev App", report.Title)
	assert.Equal(t, []string{"html", "meta", "script"}, report.Tags)
	assert.Contains(t, report.Frameworks, "react")
	assert.Contains(t, report.Frameworks, "next.js")
	assert.False(t, report.ErrorMarker)
	assert.NotEmpty(t, report.Performance)
	assert.Positive(t, report.ContentLength)
}

func TestProbe_ServerErrorIsUnexpected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "internal exception", http.StatusInternalServerError)
	}))
	defer srv.Close()

	host, port := serverPort(t, srv)
	report := Probe(context.Background(), host, port, "/", time.Second)
	assert.Equal(t, schema.Unexpected, report.State)
	assert.Equal(t, http.StatusInternalServerError, report.StatusCode)
	assert.True(t, report.ErrorMarker)
}

func TestProbe_RedirectNotFollowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/" {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		t.Errorf("redirect was followed to %s", r.URL.Path)
	}))
	defer srv.Close()

	host, port := serverPort(t, srv)
	report := Probe(context.Background(), host, port, "/", time.Second)
	assert.Equal(t, schema.Accessible, report.State)
	assert.Equal(t, http.StatusFound, report.StatusCode)
}

func TestProbe_ConnectionRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	start := time.Now()
	report := Probe(context.Background(), "127.0.0.1", port, "/", 2*time.Second)
	assert.Equal(t, schema.ConnectionRefused, report.State)
	assert.NotEmpty(t, report.Hints)
	assert.Less(t, time.Since(start), 2*time.Second+500*time.Millisecond)
}

func TestProbe_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	host, port := serverPort(t, srv)
	start := time.Now()
	report := Probe(context.Background(), host, port, "/", 100*time.Millisecond)
	assert.Equal(t, schema.Timeout, report.State)
	assert.NotEmpty(t, report.Hints)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestPerformanceBand(t *testing.T) {
	assert.Equal(t, PerfExcellent, PerformanceBand(99*time.Millisecond))
	assert.Equal(t, PerfGood, PerformanceBand(100*time.Millisecond))
	assert.Equal(t, PerfAcceptable, PerformanceBand(500*time.Millisecond))
	assert.Equal(t, PerfSlow, PerformanceBand(2*time.Second))
}

func TestFingerprint_PlainText(t *testing.T) {
	var report schema.EndpointReport
	Fingerprint(&report, []byte("ok"), nil)
	assert.Empty(t, report.Frameworks)
	assert.Empty(t, report.Tags)
	assert.Empty(t, report.Title)
	assert.False(t, report.ErrorMarker)
}
