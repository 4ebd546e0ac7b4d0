package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// Pages maps the fixed HTML routes to documents in <base>/template.
var Pages = map[string]string{
	"/":              "index.html",
	"/index.html":    "index.html",
	"/about.html":    "about.html",
	"/nailhome.html": "nailhome.html",
	"/nailpred.html": "nailpred.html",
}

// AllowedFiles may be fetched by name from the base directory.
var AllowedFiles = map[string]bool{
	"index.html":    true,
	"about.html":    true,
	"nailhome.html": true,
	"nailpred.html": true,
	"main.css":      true,
	"main.js":       true,
	"styles.css":    true,
	"script.js":     true,
}

const staticPrefix = "static/"

// Page returns a handler that serves a template document as is.
func (h *Handler) Page(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.sendFile(c, filepath.Join(h.baseDir, "template"), name)
	}
}

// ServeFile is the catch-all route: allow-listed files from the base
// directory, anything under static/, and a JSON 404 otherwise.
func (h *Handler) ServeFile(c *gin.Context) {
	if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
		jsonError(c, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	name := strings.TrimPrefix(c.Request.URL.Path, "/")
	switch {
	case AllowedFiles[name]:
		h.sendFile(c, h.baseDir, name)
	case strings.HasPrefix(name, staticPrefix):
		h.sendFile(c, filepath.Join(h.baseDir, "static"), strings.TrimPrefix(name, staticPrefix))
	default:
		jsonError(c, http.StatusNotFound, "Not found")
	}
}

// sendFile serves rel from root. Paths escaping root, directories and
// missing files are 404s.
func (h *Handler) sendFile(c *gin.Context, root, rel string) {
	rel = filepath.FromSlash(rel)
	if !filepath.IsLocal(rel) {
		jsonError(c, http.StatusNotFound, "Not found")
		return
	}

	f, err := os.Open(filepath.Join(root, rel))
	if err != nil {
		jsonError(c, http.StatusNotFound, "Not found")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || info.IsDir() {
		jsonError(c, http.StatusNotFound, "Not found")
		return
	}

	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
