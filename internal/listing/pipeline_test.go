package listing

import (
	"net/url"
	"testing"
	"time"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

func at(day int) *time.Time {
	t := time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
	return &t
}

func prop(id int64, price float64, show bool) domain.Property {
	return domain.Property{ID: id, Price: price, Show: show, Address: "1 Admiralty Way", City: "Lagos", State: "Lagos"}
}

func ids(props []domain.Property) []int64 {
	out := make([]int64, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func equalIDs(a, b []int64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSearch_TenVisibleSplitAcrossTwoPages(t *testing.T) {
	t.Parallel()

	var props []domain.Property
	for i := 1; i <= 10; i++ {
		props = append(props, prop(int64(i), float64(i*1000), true))
	}
	pl := NewPipeline(nil, 0)

	first := pl.Search(props, Params{SortBy: SortRecommended, Page: 1})
	if len(first.Cards) != 9 {
		t.Fatalf("page1 cards=%d want=9", len(first.Cards))
	}
	if first.Page.TotalPages != 2 || first.Page.TotalItems != 10 {
		t.Fatalf("page meta=%+v", first.Page)
	}

	second := pl.Search(props, Params{SortBy: SortRecommended, Page: 2})
	if len(second.Cards) != 1 {
		t.Fatalf("page2 cards=%d want=1", len(second.Cards))
	}
	// одинаковое время создания -> по id по убыванию, последний id=1
	if second.Cards[0].ID != 1 {
		t.Fatalf("page2 id=%d want=1", second.Cards[0].ID)
	}
}

func TestSearch_HiddenNeverShownAndEmptyState(t *testing.T) {
	t.Parallel()

	props := []domain.Property{prop(1, 100, false), prop(2, 200, false)}
	res := NewPipeline(nil, 9).Search(props, Params{Page: 1})
	if !res.Empty || len(res.Cards) != 0 {
		t.Fatalf("want empty result, got %+v", res)
	}
	if res.FallbackApplied {
		t.Fatalf("search must not fall back")
	}
	if res.Page.TotalPages != 0 || res.Pages != nil {
		t.Fatalf("empty result page meta=%+v pages=%v", res.Page, res.Pages)
	}
}

func TestHomeFeed_FallsBackWhenNothingMatches(t *testing.T) {
	t.Parallel()

	props := []domain.Property{prop(1, 100, false), prop(2, 200, true)}
	pl := NewPipeline(nil, 9)

	res := pl.HomeFeed(props, Params{MinPrice: 1_000_000, Page: 1})
	if !res.FallbackApplied {
		t.Fatalf("expected fallback")
	}
	if len(res.Cards) != 2 {
		t.Fatalf("fallback cards=%d want=2", len(res.Cards))
	}

	res = pl.HomeFeed(props, Params{MaxPrice: 150, Page: 1})
	if res.FallbackApplied || len(res.Cards) != 1 || res.Cards[0].ID != 1 {
		t.Fatalf("home feed ignores visibility, got %+v", res)
	}
}

func TestFilter_PriceBoundsInclusiveAndIdentity(t *testing.T) {
	t.Parallel()

	props := []domain.Property{prop(1, 100, true), prop(2, 150, true), prop(3, 200, true), prop(4, 250, true)}
	pl := NewPipeline(nil, 9)

	all := pl.Filter(props, Params{}, true)
	if !equalIDs(ids(all), []int64{1, 2, 3, 4}) {
		t.Fatalf("no bounds must keep everything, got %v", ids(all))
	}

	got := pl.Filter(props, Params{MinPrice: 100, MaxPrice: 200}, true)
	if !equalIDs(ids(got), []int64{1, 2, 3}) {
		t.Fatalf("inclusive range got %v", ids(got))
	}
}

func TestFilter_LocationDictionaryAndFallbackTokens(t *testing.T) {
	t.Parallel()

	a := prop(1, 1, true)
	a.Address = "Plot 5, Victoria Island"
	b := prop(2, 1, true)
	b.Address = "12 Bourdillon Road"
	b.City = "Ikoyi"
	c := prop(3, 1, true)
	c.Location = "GRA Phase 2"
	c.City = "Port Harcourt"
	props := []domain.Property{a, b, c}
	pl := NewPipeline(nil, 9)

	cases := []struct {
		slug string
		want []int64
	}{
		{"victoria-island", []int64{1}},
		{"ikoyi", []int64{2}},
		{"port-harcourt", []int64{3}},
		{"gra-phase", []int64{3}},
		{"unknown-place", nil},
	}
	for _, c := range cases {
		got := ids(pl.Filter(props, Params{Location: c.slug}, true))
		if !equalIDs(got, c.want) {
			t.Errorf("location %q got %v want %v", c.slug, got, c.want)
		}
	}
}

func TestFilter_TagsAndListingType(t *testing.T) {
	t.Parallel()

	a := prop(1, 1, true)
	a.Amenities = "Pool, Gym, 24h Power"
	a.PropertyType = "Duplex"
	a.IsForRent = true
	b := prop(2, 1, true)
	b.Amenities = "Pool"
	b.PropertyType = "Flat"
	c := prop(3, 1, true)
	props := []domain.Property{a, b, c}
	pl := NewPipeline(nil, 9)

	if got := ids(pl.Filter(props, Params{Amenities: []string{"pool", "gym"}}, true)); !equalIDs(got, []int64{1}) {
		t.Fatalf("amenities all-of got %v", got)
	}
	if got := ids(pl.Filter(props, Params{Amenities: []string{"pool"}}, true)); !equalIDs(got, []int64{1, 2}) {
		t.Fatalf("amenities single got %v", got)
	}
	if got := ids(pl.Filter(props, Params{PropertyTypes: []string{"flat", "duplex"}}, true)); !equalIDs(got, []int64{1, 2}) {
		t.Fatalf("property type any-of got %v", got)
	}
	if got := ids(pl.Filter(props, Params{Type: TypeRent}, true)); !equalIDs(got, []int64{1}) {
		t.Fatalf("rent got %v", got)
	}
	if got := ids(pl.Filter(props, Params{Type: TypeSale}, true)); !equalIDs(got, []int64{2, 3}) {
		t.Fatalf("sale got %v", got)
	}
}

func TestFilter_TextSearch(t *testing.T) {
	t.Parallel()

	a := prop(1, 1, true)
	a.Description = "Spacious terrace with BQ"
	b := prop(2, 1, true)
	b.City = "Abuja"
	props := []domain.Property{a, b}
	pl := NewPipeline(nil, 9)

	if got := ids(pl.Filter(props, Params{Query: "terrace"}, true)); !equalIDs(got, []int64{1}) {
		t.Fatalf("description match got %v", got)
	}
	if got := ids(pl.Filter(props, Params{Query: "abuja"}, true)); !equalIDs(got, []int64{2}) {
		t.Fatalf("city match got %v", got)
	}
}

func TestSort_Recommended(t *testing.T) {
	t.Parallel()

	hiddenNew := prop(1, 1, false)
	hiddenNew.CreatedAt = at(20)
	oldVisible := prop(2, 1, true)
	oldVisible.CreatedAt = at(1)
	newVisible := prop(3, 1, true)
	newVisible.CreatedAt = at(10)
	tieLow := prop(4, 1, true)
	tieLow.CreatedAt = at(5)
	tieHigh := prop(5, 1, true)
	tieHigh.CreatedAt = at(5)

	got := ids(Sort([]domain.Property{hiddenNew, oldVisible, newVisible, tieLow, tieHigh}, SortRecommended))
	want := []int64{3, 5, 4, 2, 1}
	if !equalIDs(got, want) {
		t.Fatalf("recommended got %v want %v", got, want)
	}
}

func TestSort_NewestTreatsMissingDateAsEpoch(t *testing.T) {
	t.Parallel()

	undated := prop(1, 1, true)
	dated := prop(2, 1, true)
	dated.CreatedAt = at(3)

	got := ids(Sort([]domain.Property{undated, dated}, SortNewest))
	if !equalIDs(got, []int64{2, 1}) {
		t.Fatalf("newest got %v", got)
	}
}

func TestSort_IdempotentAndStable(t *testing.T) {
	t.Parallel()

	props := []domain.Property{prop(1, 300, true), prop(2, 100, false), prop(3, 300, true), prop(4, 200, true)}
	props[1].CreatedAt = at(2)

	for _, k := range []SortKey{SortRecommended, SortPriceLow, SortPriceHigh, SortNewest, SortDistance} {
		once := Sort(props, k)
		twice := Sort(once, k)
		if !equalIDs(ids(once), ids(twice)) {
			t.Errorf("%s not idempotent: %v vs %v", k, ids(once), ids(twice))
		}
	}

	if got := ids(Sort(props, SortPriceLow)); !equalIDs(got, []int64{2, 4, 1, 3}) {
		t.Fatalf("price_low got %v", got)
	}
	if got := ids(Sort(props, SortPriceHigh)); !equalIDs(got, []int64{1, 3, 4, 2}) {
		t.Fatalf("price_high got %v", got)
	}
	if got := ids(Sort(props, SortDistance)); !equalIDs(got, []int64{1, 2, 3, 4}) {
		t.Fatalf("distance must keep order, got %v", got)
	}
	if props[0].ID != 1 || props[1].ID != 2 {
		t.Fatalf("input slice was modified")
	}
}

func TestPaginate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		total, page, size   int
		wantPage, wantPages int
		start, end          int
	}{
		{10, 1, 9, 1, 2, 0, 9},
		{10, 2, 9, 2, 2, 9, 10},
		{10, 7, 9, 2, 2, 9, 10},
		{10, 0, 9, 1, 2, 0, 9},
		{18, 2, 9, 2, 2, 9, 18},
		{0, 3, 9, 1, 0, 0, 0},
		{5, 1, 0, 1, 1, 0, 5},
	}
	for _, c := range cases {
		pg := Paginate(c.total, c.page, c.size)
		if pg.CurrentPage != c.wantPage || pg.TotalPages != c.wantPages || pg.StartIndex != c.start || pg.EndIndex != c.end {
			t.Errorf("Paginate(%d,%d,%d)=%+v", c.total, c.page, c.size, pg)
		}
	}
}

func TestPageWindow(t *testing.T) {
	t.Parallel()

	render := func(ms []PageMarker) []int {
		out := make([]int, 0, len(ms))
		for _, m := range ms {
			if m.Ellipsis {
				out = append(out, 0)
				continue
			}
			out = append(out, m.Number)
		}
		return out
	}
	eq := func(a, b []int) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	}

	// 0 = многоточие
	cases := []struct {
		current, total int
		want           []int
	}{
		{1, 1, []int{1}},
		{1, 3, []int{1, 2, 3}},
		{1, 10, []int{1, 2, 0, 10}},
		{4, 10, []int{1, 2, 3, 4, 5, 0, 10}},
		{5, 10, []int{1, 0, 4, 5, 6, 0, 10}},
		{10, 10, []int{1, 0, 9, 10}},
	}
	for _, c := range cases {
		if got := render(PageWindow(c.current, c.total)); !eq(got, c.want) {
			t.Errorf("PageWindow(%d,%d)=%v want %v", c.current, c.total, got, c.want)
		}
	}
	if PageWindow(1, 0) != nil {
		t.Fatalf("no pages -> no markers")
	}
}

func TestParseParams_MalformedValuesAreAbsent(t *testing.T) {
	t.Parallel()

	v := url.Values{
		"minPrice": {"abc"},
		"maxPrice": {"Inf"},
		"page":     {"-2"},
		"sortBy":   {"cheapest"},
		"type":     {"lease"},
	}
	p := ParseParams(v)
	if p.MinPrice != 0 || p.MaxPrice != 0 {
		t.Fatalf("bounds=%v,%v want 0,0", p.MinPrice, p.MaxPrice)
	}
	if p.Page != 1 || p.SortBy != SortRecommended || p.Type != TypeAny {
		t.Fatalf("params=%+v", p)
	}
	if p.HasFilters() {
		t.Fatalf("no filters expected")
	}

	p = ParseParams(url.Values{"minPrice": {"-5"}, "maxPrice": {"2,500,000"}})
	if p.MinPrice != 0 || p.MaxPrice != 2_500_000 {
		t.Fatalf("bounds=%v,%v", p.MinPrice, p.MaxPrice)
	}
}

func TestParams_ChangesResetPage(t *testing.T) {
	t.Parallel()

	p := ParseParams(url.Values{
		"location":  {"lekki"},
		"amenities": {"pool,gym"},
		"sortBy":    {"price_low"},
		"page":      {"3"},
	})
	if p.Page != 3 || len(p.Amenities) != 2 {
		t.Fatalf("parsed=%+v", p)
	}

	if got := p.WithFilter(ParamMinPrice, "1000"); got.Page != 1 || got.MinPrice != 1000 || got.Location != "lekki" {
		t.Fatalf("WithFilter=%+v", got)
	}
	if got := p.WithFilter(ParamLocation, ""); got.Page != 1 || got.Location != "" {
		t.Fatalf("clearing one filter=%+v", got)
	}
	if got := p.WithSort(SortNewest); got.Page != 1 || got.SortBy != SortNewest {
		t.Fatalf("WithSort=%+v", got)
	}
	if got := p.Clear(); got.Page != 1 || got.HasFilters() || got.SortBy != SortPriceLow {
		t.Fatalf("Clear=%+v", got)
	}
	if got := p.WithPage(2); got.Page != 2 || got.Location != "lekki" {
		t.Fatalf("WithPage=%+v", got)
	}

	back := ParseParams(p.Values())
	if back.Location != p.Location || back.Page != p.Page || back.SortBy != p.SortBy || len(back.Amenities) != 2 {
		t.Fatalf("values round trip=%+v", back)
	}
}

func TestLoadLocationKeywords_FallsBackToDefaults(t *testing.T) {
	t.Parallel()

	kw, err := LoadLocationKeywords("testdata/does-not-exist.json")
	if err == nil {
		t.Fatalf("expected error for missing file")
	}
	if len(kw.Keywords("lekki")) == 0 {
		t.Fatalf("defaults missing on error")
	}
}
