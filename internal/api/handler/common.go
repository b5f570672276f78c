package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NE-Resources-2025/Restful-sample-pms/internal/domain"
)

// pageQuery reads the shared ?page=&limit=&search= listing parameters.
func pageQuery(c *gin.Context) (domain.Page, string) {
	pageNum, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	search := c.Query("search")
	return domain.Page{PageNum: pageNum, Limit: limit}.Normalize(), search
}

// idParam parses the :id path segment, answering 400 itself when invalid.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return id, true
}
