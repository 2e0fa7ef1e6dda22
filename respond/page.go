package respond

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxLimit = 100

// Page is a validated ?page=&limit= pair
type Page struct {
	Number int
	Limit  int
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Limit
}

// TotalPages rounds total up to whole pages
func (p Page) TotalPages(total int64) int {
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// Pagination reads page (default 1) and limit (default defaultLimit, clamped to 1..100).
// An invalid page responds 400.
func Pagination(c *gin.Context, defaultLimit int) (Page, bool) {
	p := Page{Number: 1, Limit: defaultLimit}
	if v := c.Query("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			Error(c, http.StatusBadRequest, "invalid page")
			return p, false
		}
		p.Number = n
	}
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			Error(c, http.StatusBadRequest, "invalid limit")
			return p, false
		}
		p.Limit = n
	}
	p.Limit = min(max(p.Limit, 1), maxLimit)
	return p, true
}
