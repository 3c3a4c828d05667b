package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/rentinout/internal/models"
)

const MaxPerPage = 20

type ListDefaults struct {
	PerPage    int
	Sort       string
	Descending bool
	// Sortable lists the fields a client may sort by.
	Sortable []string
}

var (
	PostListDefaults = ListDefaults{
		PerPage:    15,
		Sort:       "createdAt",
		Descending: true,
		Sortable:   []string{"createdAt", "updatedAt", "price", "title", "category_url"},
	}
	UserListDefaults = ListDefaults{
		PerPage:  10,
		Sort:     "role",
		Sortable: []string{"role", "createdAt", "email", "fullName.firstName", "fullName.lastName", "country", "city"},
	}
	CategoryListDefaults = ListDefaults{
		PerPage:  10,
		Sort:     "name",
		Sortable: []string{"name", "url_name", "createdAt"},
	}
)

// ParseListQuery reads page, perPage, sort and reverse from the query string.
func ParseListQuery(c *gin.Context, d ListDefaults) models.ListQuery {
	q := models.ListQuery{
		Page:       1,
		PerPage:    d.PerPage,
		Sort:       d.Sort,
		Descending: d.Descending,
	}

	if n, err := strconv.Atoi(c.Query("perPage")); err == nil && n > 0 {
		q.PerPage = n
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}
	if n, err := strconv.Atoi(c.Query("page")); err == nil && n > 0 {
		q.Page = n
	}
	if sort := c.Query("sort"); sort != "" {
		for _, allowed := range d.Sortable {
			if sort == allowed {
				q.Sort = sort
				break
			}
		}
	}
	switch c.Query("reverse") {
	case "yes":
		q.Descending = true
	case "no":
		q.Descending = false
	}
	return q
}
