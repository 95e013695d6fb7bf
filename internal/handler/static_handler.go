package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gradedesk/gradedesk/internal/response"
)

// SPA serves the built view assets from dir. Unknown paths fall back to
// index.html so client-side routes resolve; /api and /ws never do.
func SPA(dir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/ws/") ||
			(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}

		// Clean against a rooted path so ".." cannot climb out of dir.
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+p)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}

		index := filepath.Join(dir, "index.html")
		if _, err := os.Stat(index); err != nil {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		c.Header("Cache-Control", "no-cache")
		c.File(index)
	}
}
