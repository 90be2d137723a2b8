package utils

import (
	"errors"
	"net/url"
	"strconv"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

var ErrInvalidPage = errors.New("invalid page")

// Page is a 1-based page-number window.
type Page struct {
	Number int
	Size   int
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// ParsePage reads page and page_size. A missing page is the first one; a
// page_size outside (0, MaxPageSize] falls back or is clamped.
func ParsePage(q url.Values) (Page, error) {
	p := Page{Number: 1, Size: DefaultPageSize}

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Page{}, ErrInvalidPage
		}
		p.Number = n
	}

	if raw := q.Get("page_size"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Size = min(n, MaxPageSize)
		}
	}

	return p, nil
}

// PageLinks returns the absolute next and previous URLs for p given total
// rows, nil where there is no such page. The first page is linked without
// a page parameter.
func PageLinks(base url.URL, p Page, total int) (next, previous *string) {
	if p.Number*p.Size < total {
		s := withPage(base, p.Number+1)
		next = &s
	}
	if p.Number > 1 {
		s := withPage(base, p.Number-1)
		previous = &s
	}
	return next, previous
}

// LastPage is the 1-based index of the final page, at least 1.
func LastPage(total, size int) int {
	if total <= 0 || size <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

func withPage(u url.URL, page int) string {
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	return u.String()
}
