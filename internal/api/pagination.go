package api

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func pageFromQuery(c *gin.Context, defaultSize int) service.Page {
	return service.NewPage(queryInt(c, "page"), queryInt(c, "limit"), defaultSize)
}

func pageURL(c *gin.Context, baseURL string, number int) *string {
	q := c.Request.URL.Query()
	q.Set("page", strconv.Itoa(number))
	u := strings.TrimRight(baseURL, "/") + c.Request.URL.Path + "?" + q.Encode()
	return &u
}

// paginate wraps one page of results with absolute next/previous links.
func paginate[T any](c *gin.Context, baseURL string, page service.Page, total int64, results []T) types.Page[T] {
	if results == nil {
		results = []T{}
	}
	out := types.Page[T]{Count: total, Results: results}
	if int64(page.Offset()+len(results)) < total {
		out.Next = pageURL(c, baseURL, page.Number+1)
	}
	if page.Number > 1 {
		out.Previous = pageURL(c, baseURL, page.Number-1)
	}
	return out
}
