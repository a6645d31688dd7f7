package pages

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/freekieb7/hearth/filesystem"
	"github.com/freekieb7/hearth/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(t *testing.T, h Handler, target string) (bool, *http.Response, error) {
	t.Helper()

	req, err := http.ParseRequest(strings.NewReader("GET " + target + " HTTP/1.1\r\n\r\n"))
	require.NoError(t, err)

	res := http.NewResponse(req.Version())
	handled, err := h.Handle(req, res)
	return handled, res, err
}

func TestPages(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "about.html"), []byte("<p>about</p>"), 0644))

	routes := map[string]string{
		"/about":  "about.html",
		"/gone":   "gone.html",
		"/escape": "../outside.html",
	}
	h, err := NewHandler(root, routes)
	require.NoError(t, err)

	// Later changes to the caller's map are not observed
	routes["/late"] = "about.html"

	handled, res, err := serve(t, h, "/about?ref=home")
	require.NoError(t, err)
	assert.True(t, handled)
	assert.Equal(t, "<p>about</p>", res.Body())
	ctype, _ := res.Header("Content-Type")
	assert.Contains(t, ctype, "text/html")

	handled, _, err = serve(t, h, "/late")
	require.NoError(t, err)
	assert.False(t, handled)

	handled, _, err = serve(t, h, "/gone")
	assert.False(t, handled)
	assert.ErrorIs(t, err, filesystem.ErrFileNotFound)

	_, _, err = serve(t, h, "/escape")
	assert.ErrorIs(t, err, filesystem.ErrInvalidPath)
}
