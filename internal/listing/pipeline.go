package listing

import (
	"github.com/denisok6893-rgb/realestate-portal/internal/card"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// Pipeline runs filter -> sort -> paginate -> map over a fetched property set.
type Pipeline struct {
	keywords LocationKeywords
	pageSize int
}

func NewPipeline(kw LocationKeywords, pageSize int) *Pipeline {
	if kw == nil {
		kw = DefaultLocationKeywords()
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Pipeline{keywords: kw, pageSize: pageSize}
}

func (pl *Pipeline) PageSize() int { return pl.pageSize }

// Result is one rendered page of a listing view.
type Result struct {
	Cards           []card.Card  `json:"items"`
	Page            Page         `json:"page"`
	Pages           []PageMarker `json:"pages"`
	Empty           bool         `json:"empty"`
	FallbackApplied bool         `json:"fallbackApplied,omitempty"`
}

// Filter returns the records of props matching params, in input order.
func (pl *Pipeline) Filter(props []domain.Property, params Params, visibleOnly bool) []domain.Property {
	return applyFilters(props, predicates(params, pl.keywords, visibleOnly))
}

// Search is the search page: hidden listings never appear and an empty match
// is reported as such.
func (pl *Pipeline) Search(props []domain.Property, params Params) Result {
	matched := pl.Filter(props, params, true)
	return pl.render(Sort(matched, params.SortBy), params.Page, false)
}

// HomeFeed is the landing page listing. It does not check visibility, and when
// the filters match nothing it falls back to the whole set.
func (pl *Pipeline) HomeFeed(props []domain.Property, params Params) Result {
	matched := pl.Filter(props, params, false)
	fallback := false
	if len(matched) == 0 && len(props) > 0 {
		matched = props
		fallback = true
	}
	return pl.render(Sort(matched, params.SortBy), params.Page, fallback)
}

func (pl *Pipeline) render(sorted []domain.Property, page int, fallback bool) Result {
	pg := Paginate(len(sorted), page, pl.pageSize)
	return Result{
		Cards:           card.FromProperties(Slice(sorted, pg)),
		Page:            pg,
		Pages:           PageWindow(pg.CurrentPage, pg.TotalPages),
		Empty:           len(sorted) == 0,
		FallbackApplied: fallback,
	}
}
