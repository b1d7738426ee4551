package validators

import (
	"mime/multipart"
	"strings"

	"regdesk/database"

	"github.com/gofiber/fiber/v2"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// FormFiles returns the first file of each named multipart field that was sent.
func FormFiles(c *fiber.Ctx, fields ...string) map[string]*multipart.FileHeader {
	files := make(map[string]*multipart.FileHeader, len(fields))
	form, err := c.MultipartForm()
	if err != nil {
		return files
	}
	for _, field := range fields {
		if headers := form.File[field]; len(headers) > 0 {
			files[field] = headers[0]
		}
	}
	return files
}

// RequireFiles reports every required field missing from files into errs.
func RequireFiles(errs map[string]string, files map[string]*multipart.FileHeader, fields ...string) map[string]string {
	for _, field := range fields {
		if _, ok := files[field]; ok {
			continue
		}
		if errs == nil {
			errs = make(map[string]string)
		}
		errs[field] = field + " is required"
	}
	return errs
}

// Paging turns already validated list parameters into a store query.
func Paging(page, limit int, status, search, sortBy, sortOrder, defaultSort string) database.ListQuery {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if sortBy == "" {
		sortBy = defaultSort
	}
	return database.ListQuery{
		Page:   page,
		Limit:  limit,
		Status: status,
		Search: strings.TrimSpace(search),
		SortBy: sortBy,
		Desc:   sortOrder != "asc",
	}
}

// Trim trims every non-nil string pointer in place.
func Trim(values ...*string) {
	for _, v := range values {
		if v != nil {
			*v = strings.TrimSpace(*v)
		}
	}
}
