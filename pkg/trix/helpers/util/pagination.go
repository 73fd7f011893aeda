package util

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/trix-studio/trix/pkg/trix/models"
)

// SetPaginationHeaders writes X-Total-Count, X-Total-Pages, X-Current-Page and
// an RFC 8288 Link header for the given page.
func SetPaginationHeaders(r *http.Request, header func(key, value string), p models.Pagination) {
	header("X-Total-Count", strconv.Itoa(p.TotalRecords))
	header("X-Total-Pages", strconv.Itoa(p.TotalPages))
	header("X-Per-Page", strconv.Itoa(p.RecordsPerPage))
	header("X-Current-Page", strconv.Itoa(p.CurrentPage))

	links := []string{pageLink(r, p.CurrentPage, p.RecordsPerPage, "self")}
	if p.Next != nil {
		links = append(links, pageLink(r, *p.Next, p.RecordsPerPage, "next"))
	}
	if p.Previous != nil {
		links = append(links, pageLink(r, *p.Previous, p.RecordsPerPage, "prev"))
	}
	header("Link", strings.Join(links, ", "))
}

func pageLink(r *http.Request, page, perPage int, rel string) string {
	u := url.URL{Path: r.URL.Path}
	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(perPage))
	u.RawQuery = q.Encode()
	return fmt.Sprintf("<%s>; rel=\"%s\"", u.String(), rel)
}
