package pagination

import (
	"strconv"

	"investa/internal/repositories"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

type Pagination struct {
	Page   int
	Limit  int
	Offset int
	Total  int64
}

// Meta is the pagination block returned with every list.
type Meta struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int   `json:"limit"`
}

// ParseFromRequest handles pagination parameters from Fiber context
func ParseFromRequest(c *fiber.Ctx) Pagination {
	return New(c.Query("page", "1"), c.Query("limit", strconv.Itoa(DefaultLimit)))
}

// New parses raw page and limit values, falling back to defaults.
func New(pageStr, limitStr string) Pagination {
	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Pagination{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// Window converts to a repository page.
func (p Pagination) Window() repositories.Page {
	return repositories.Page{Offset: p.Offset, Limit: p.Limit}
}

// Meta computes the response block. total_pages is at least 1.
func (p Pagination) Meta(total int64) Meta {
	pages := int(total / int64(p.Limit))
	if total%int64(p.Limit) > 0 {
		pages++
	}
	if pages < 1 {
		pages = 1
	}
	return Meta{
		CurrentPage: p.Page,
		TotalPages:  pages,
		TotalItems:  total,
		Limit:       p.Limit,
	}
}

// Response nests items under key next to the pagination block.
func Response(key string, p Pagination, total int64, items interface{}) fiber.Map {
	return fiber.Map{
		key:          items,
		"pagination": p.Meta(total),
	}
}
