package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
)

const indexFile = "index.html"

// StaticHandler serves the front end. Files come from dir when it is set,
// otherwise from the embedded bundle.
type StaticHandler struct {
	files fs.FS
}

// NewStaticHandler creates a handler rooted at dir, or at embedded when dir
// is empty.
func NewStaticHandler(dir string, embedded fs.FS) (*StaticHandler, error) {
	if dir == "" {
		return &StaticHandler{files: embedded}, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("static dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("static dir: %s is not a directory", dir)
	}
	return &StaticHandler{files: os.DirFS(dir)}, nil
}

// safePath turns a request path into a name inside the static root.
func safePath(urlPath string) (string, error) {
	if strings.Contains(urlPath, "..") {
		return "", fmt.Errorf("invalid path: %s", urlPath)
	}
	name := strings.TrimPrefix(path.Clean("/"+urlPath), "/")
	if name == "" {
		return indexFile, nil
	}
	if !fs.ValidPath(name) {
		return "", fmt.Errorf("invalid path: %s", urlPath)
	}
	return name, nil
}

// ServeHTTP handles GET / and every other non-API path.
func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	name, err := safePath(r.URL.Path)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	info, err := fs.Stat(h.files, name)
	if errors.Is(err, fs.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if info.IsDir() {
		name = path.Join(name, indexFile)
		if _, err := fs.Stat(h.files, name); err != nil {
			http.NotFound(w, r)
			return
		}
	}
	http.ServeFileFS(w, r, h.files, name)
}
