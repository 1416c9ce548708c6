package listing

import "sort"

// DefaultPageSize is the search results page size.
const DefaultPageSize = 9

// Page is the pagination metadata of one listing view. EndIndex is exclusive.
type Page struct {
	TotalItems  int `json:"totalItems"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
	StartIndex  int `json:"startIndex"`
	EndIndex    int `json:"endIndex"`
}

// Paginate computes slice bounds for page over total items. Out-of-range pages
// are clamped.
func Paginate(total, page, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total < 0 {
		total = 0
	}
	pages := (total + size - 1) / size
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = max(pages, 1)
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return Page{
		TotalItems:  total,
		TotalPages:  pages,
		CurrentPage: page,
		PageSize:    size,
		StartIndex:  start,
		EndIndex:    end,
	}
}

// Slice returns the items of pg.
func Slice[T any](items []T, pg Page) []T {
	if pg.StartIndex >= len(items) {
		return []T{}
	}
	end := pg.EndIndex
	if end > len(items) {
		end = len(items)
	}
	return items[pg.StartIndex:end]
}

// PageMarker is one entry of the page list: a page number or an ellipsis.
type PageMarker struct {
	Number   int  `json:"number,omitempty"`
	Ellipsis bool `json:"ellipsis,omitempty"`
}

// PageWindow lists the page links to render: first, last and current±1, with an
// ellipsis for every gap of two or more pages. A gap of one page shows that page.
func PageWindow(current, total int) []PageMarker {
	if total <= 0 {
		return nil
	}
	if current < 1 {
		current = 1
	}
	if current > total {
		current = total
	}
	set := map[int]struct{}{1: {}, total: {}}
	for n := current - 1; n <= current+1; n++ {
		if n >= 1 && n <= total {
			set[n] = struct{}{}
		}
	}
	nums := make([]int, 0, len(set))
	for n := range set {
		nums = append(nums, n)
	}
	sort.Ints(nums)

	out := make([]PageMarker, 0, len(nums)+2)
	prev := 0
	for _, n := range nums {
		switch gap := n - prev; {
		case gap == 2:
			out = append(out, PageMarker{Number: n - 1})
		case gap > 2:
			out = append(out, PageMarker{Ellipsis: true})
		}
		out = append(out, PageMarker{Number: n})
		prev = n
	}
	return out
}
