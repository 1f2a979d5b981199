package routes

import (
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salon-server/store"
	"salon-server/types"
)

// respondError writes the error envelope. Errors that are not one of the
// structured kinds are logged and reported as a 500 without detail.
func respondError(c *gin.Context, err error) {
	kind := types.KindOf(err)
	if kind == "" {
		log.Printf("❌ %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "internal_error",
			"message": "Internal server error",
		})
		return
	}
	c.JSON(types.HTTPStatus(err), gin.H{
		"success": false,
		"error":   kind,
		"message": types.MessageOf(err),
	})
}

func badRequest(c *gin.Context, format string, args ...any) {
	respondError(c, types.NewValidation(format, args...))
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// pagination reads page and limit, clamping limit to 1..100 (default 50).
func pagination(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}
	return page, limit
}

// parseTime accepts RFC 3339 timestamps or plain dates (server local time).
func parseTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02", value, time.Local)
}

// listFilter builds a store filter from the query string:
// status, from, to, date_from, date_to, q, page, limit.
func listFilter(c *gin.Context) (store.Filter, int, int, error) {
	page, limit := pagination(c)
	f := store.Filter{
		Status:   strings.TrimSpace(c.Query("status")),
		DateFrom: c.Query("date_from"),
		DateTo:   c.Query("date_to"),
		Search:   c.Query("q"),
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}

	for name, v := range map[string]string{"date_from": f.DateFrom, "date_to": f.DateTo} {
		if v == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", v); err != nil {
			return f, 0, 0, types.NewValidation("%s must be a date (YYYY-MM-DD)", name)
		}
	}

	if v := c.Query("from"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, 0, 0, types.NewValidation("from must be a date or RFC 3339 timestamp")
		}
		f.CreatedFrom = t
	}
	if v := c.Query("to"); v != "" {
		t, err := parseTime(v)
		if err != nil {
			return f, 0, 0, types.NewValidation("to must be a date or RFC 3339 timestamp")
		}
		if len(v) == len("2006-01-02") {
			// A plain date includes the whole day
			t = t.AddDate(0, 0, 1)
		}
		f.CreatedTo = t
	}
	return f, page, limit, nil
}

func respondList(c *gin.Context, items any, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}
