package pages

import (
	"maps"
	"mime"
	"path"

	"github.com/freekieb7/hearth/filesystem"
	"github.com/freekieb7/hearth/http"
)

// Handler serves fixed pages for exact request paths. A page that cannot be
// read is a handler failure, not a miss.
type Handler struct {
	fs     filesystem.Filesystem
	routes map[string]string
}

// NewHandler maps request paths to page files below root.
func NewHandler(root string, routes map[string]string) (Handler, error) {
	fs, err := filesystem.NewRootedFileSystem(root)
	if err != nil {
		return Handler{}, err
	}

	return Handler{
		fs:     fs,
		routes: maps.Clone(routes),
	}, nil
}

func (h Handler) Handle(req *http.Request, res *http.Response) (bool, error) {
	page, ok := h.routes[req.Path()]
	if !ok {
		return false, nil
	}

	data, err := h.fs.ReadFile(page)
	if err != nil {
		return false, err
	}

	ctype := mime.TypeByExtension(path.Ext(page))
	if ctype == "" {
		ctype = "text/html; charset=utf-8"
	}
	res.SetHeader("Content-Type", ctype)
	res.AddBody(string(data))
	return true, nil
}
