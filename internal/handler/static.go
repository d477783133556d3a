package handler

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// StaticHandler serves the browser app from a directory. Unknown paths fall
// back to index.html so client-side routes survive a reload.
type StaticHandler struct {
	root   string
	logger *slog.Logger
}

// NewStaticHandler serves files under root. A missing root is not an error:
// every request then gets 404, and the API keeps working.
func NewStaticHandler(root string, logger *slog.Logger) (*StaticHandler, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("handler: resolving web root %q: %w", root, err)
	}
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		logger.Warn("web root missing; serving API only", slog.String("path", abs))
	}
	return &StaticHandler{root: abs, logger: logger}, nil
}

func (h *StaticHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := r.URL.Path
	if p == "" || p == "/" {
		p = "/index.html"
	}

	candidate, ok := safeJoin(h.root, p)
	if !ok {
		h.logger.Warn("static: path escapes web root", slog.String("path", r.URL.Path))
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if h.serveFile(w, r, candidate) {
		return
	}
	if h.serveFile(w, r, filepath.Join(h.root, "index.html")) {
		return
	}
	http.Error(w, "Not Found", http.StatusNotFound)
}

// serveFile reports false when name is not a regular file.
func (h *StaticHandler) serveFile(w http.ResponseWriter, r *http.Request, name string) bool {
	f, err := os.Open(name)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

// safeJoin resolves target under root and reports whether the result stays
// inside root. Join cleans "..", so a path that climbs out shows up as a
// result without the root prefix.
func safeJoin(root, target string) (string, bool) {
	resolved := filepath.Join(root, filepath.FromSlash(target))
	if resolved != root && !strings.HasPrefix(resolved, root+string(filepath.Separator)) {
		return "", false
	}
	return resolved, true
}
