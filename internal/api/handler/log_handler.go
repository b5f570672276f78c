package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/service"
)

type LogHandler struct {
	logService *service.LogService
}

func NewLogHandler(ls *service.LogService) *LogHandler {
	return &LogHandler{logService: ls}
}

// GET /api/logs (admin)
func (h *LogHandler) List(c *gin.Context) {
	page, search := pageQuery(c)
	entries, meta, err := h.logService.List(c.Request.Context(), search, page)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entries, "meta": meta})
}
