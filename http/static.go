package http

import (
	"mime"
	"path"

	"github.com/freekieb7/hearth/filesystem"
)

// Static serves files below a public root and the not-found page.
type Static struct {
	public       filesystem.Filesystem
	pages        filesystem.Filesystem
	notFoundPage string
}

func NewStatic(publicRoot, notFoundPage string) (Static, error) {
	public, err := filesystem.NewRootedFileSystem(publicRoot)
	if err != nil {
		return Static{}, err
	}

	return Static{
		public:       public,
		pages:        filesystem.NewLocalFileSystem(),
		notFoundPage: notFoundPage,
	}, nil
}

// Serve appends the file named by the request path to res. It reports false
// for any read failure, including paths that would leave the public root,
// and leaves res untouched in that case.
func (s Static) Serve(req *Request, res *Response) bool {
	name := req.Path()

	data, err := s.public.ReadFile(name)
	if err != nil {
		return false
	}

	if ctype := mime.TypeByExtension(path.Ext(name)); ctype != "" {
		res.SetHeader("Content-Type", ctype)
	}
	res.AddBody(string(data))
	return true
}

// NotFound turns res into a 404 carrying the not-found page. When the page
// cannot be read a built-in body is used and the read error is returned.
func (s Static) NotFound(res *Response) error {
	res.WithStatus(StatusNotFound)
	res.SetHeader("Content-Type", "text/html; charset=utf-8")

	data, err := s.pages.ReadFile(s.notFoundPage)
	if err != nil {
		res.AddBody(notFoundFallbackBody)
		return err
	}

	res.AddBody(string(data))
	return nil
}
