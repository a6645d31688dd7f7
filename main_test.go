package main

import (
	"context"
	"io"
	"net"
	nethttp "net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/freekieb7/hearth/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func site(t *testing.T) []string {
	t.Helper()

	dir := t.TempDir()
	pagesDir := filepath.Join(dir, "pages")
	publicDir := filepath.Join(dir, "public")
	require.NoError(t, os.MkdirAll(pagesDir, 0755))
	require.NoError(t, os.MkdirAll(publicDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "index.html"), []byte(`{{range .Tasks}}[{{.Text}}]{{end}}`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "about.html"), []byte("about"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "not_found.html"), []byte("missing"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(publicDir, "style.css"), []byte("css"), 0644))

	return []string{
		"-pages", pagesDir,
		"-public", publicDir,
		"-not-found", filepath.Join(pagesDir, "not_found.html"),
		"-data", filepath.Join(dir, "data", "tasks.json"),
		"-workers", "2",
		"-telemetry=false",
	}
}

func TestRun(t *testing.T) {
	addr := freeAddr(t)
	args := append(site(t), "-addr", addr)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, args) }()

	client := &nethttp.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *nethttp.Request, via []*nethttp.Request) error {
			return nethttp.ErrUseLastResponse
		},
	}
	get := func(path string) (int, string) {
		resp, err := client.Get("http://" + addr + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 5*time.Second, 20*time.Millisecond)

	code, _ := get("/add?text=first")
	assert.Equal(t, 302, code)

	code, body := get("/")
	assert.Equal(t, 200, code)
	assert.Equal(t, "[first]", body)

	code, body = get("/calculate?a=6&b=7&op=mul")
	assert.Equal(t, 200, code)
	assert.Equal(t, "42", body)

	code, body = get("/about")
	assert.Equal(t, 200, code)
	assert.Equal(t, "about", body)

	code, body = get("/style.css")
	assert.Equal(t, 200, code)
	assert.Equal(t, "css", body)

	code, body = get("/nope")
	assert.Equal(t, 404, code)
	assert.Equal(t, "missing", body)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after cancel")
	}
}

func TestRunBindFailure(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer taken.Close()

	err = run(context.Background(), append(site(t), "-addr", taken.Addr().String()))
	assert.ErrorIs(t, err, http.ErrBind)
}

func TestRunInvalidConfig(t *testing.T) {
	err := run(context.Background(), []string{"-workers", "0", "-telemetry=false"})
	assert.Error(t, err)
}
