package diagnostics

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kidpech/logviewer/pkg/response"
)

// Handler exposes the viewer page, the incremental log feed and health.
type Handler struct {
	buffer *LogBuffer
	page   []byte
}

// NewHandler returns handler serving page at the root.
func NewHandler(buffer *LogBuffer, page []byte) *Handler {
	return &Handler{buffer: buffer, page: page}
}

// RegisterPublic attaches the viewer endpoints.
func (h *Handler) RegisterPublic(rg gin.IRoutes) {
	rg.GET("/", h.index)
	rg.GET("/logs", h.logs)
	rg.GET("/health", h.health)
}

func (h *Handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
}

// logs never rejects a request: a bad cursor reads from the beginning and
// an unknown level disables filtering.
func (h *Handler) logs(c *gin.Context) {
	since := response.GetInt64(c, "since", 0)
	if since < 0 {
		since = 0
	}
	level, ok := ParseLevel(c.Query("level"))
	if !ok {
		level = LevelAny
	}
	c.JSON(http.StatusOK, h.buffer.QuerySince(since, level))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "entries": h.buffer.Len()})
}
