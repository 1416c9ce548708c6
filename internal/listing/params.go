package listing

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

type SortKey string

const (
	SortRecommended SortKey = "recommended"
	SortPriceLow    SortKey = "price_low"
	SortPriceHigh   SortKey = "price_high"
	SortNewest      SortKey = "newest"
	SortDistance    SortKey = "distance"
)

func parseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortPriceLow, SortPriceHigh, SortNewest, SortDistance:
		return k
	default:
		return SortRecommended
	}
}

// ListingType narrows results to sale or rental listings.
type ListingType string

const (
	TypeAny  ListingType = ""
	TypeSale ListingType = "sale"
	TypeRent ListingType = "rent"
)

// Query parameter names. They are part of the public URL contract, so filtered
// views stay bookmarkable.
const (
	ParamQuery        = "q"
	ParamLocation     = "location"
	ParamMinPrice     = "minPrice"
	ParamMaxPrice     = "maxPrice"
	ParamType         = "type"
	ParamPropertyType = "propertyType"
	ParamAmenities    = "amenities"
	ParamFeatures     = "features"
	ParamSort         = "sortBy"
	ParamPage         = "page"
)

// Params is the parsed filter/sort/page state of a listing view.
type Params struct {
	Query         string
	Location      string
	MinPrice      float64
	MaxPrice      float64
	Type          ListingType
	PropertyTypes []string
	Amenities     []string
	Features      []string
	SortBy        SortKey
	Page          int
}

// ParseParams reads listing state from URL query values. Malformed numbers are
// treated as absent.
func ParseParams(v url.Values) Params {
	p := Params{
		Query:         strings.TrimSpace(v.Get(ParamQuery)),
		Location:      strings.ToLower(strings.TrimSpace(v.Get(ParamLocation))),
		MinPrice:      parseBound(v.Get(ParamMinPrice)),
		MaxPrice:      parseBound(v.Get(ParamMaxPrice)),
		PropertyTypes: splitTags(v[ParamPropertyType]),
		Amenities:     splitTags(v[ParamAmenities]),
		Features:      splitTags(v[ParamFeatures]),
		SortBy:        parseSortKey(v.Get(ParamSort)),
		Page:          1,
	}
	switch ListingType(strings.ToLower(strings.TrimSpace(v.Get(ParamType)))) {
	case TypeSale:
		p.Type = TypeSale
	case TypeRent:
		p.Type = TypeRent
	}
	if n, err := strconv.Atoi(v.Get(ParamPage)); err == nil && n > 0 {
		p.Page = n
	}
	return p
}

// parseBound accepts only finite positive numbers.
func parseBound(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return 0
	}
	return f
}

// splitTags accepts both repeated keys and comma-separated values.
func splitTags(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range raw {
		for _, t := range strings.Split(r, ",") {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// HasFilters reports whether any filter (not sort or page) is active.
func (p Params) HasFilters() bool {
	return p.Query != "" || p.Location != "" || p.MinPrice > 0 || p.MaxPrice > 0 ||
		p.Type != TypeAny || len(p.PropertyTypes) > 0 || len(p.Amenities) > 0 || len(p.Features) > 0
}

// Values encodes p back into query values, omitting defaults.
func (p Params) Values() url.Values {
	v := url.Values{}
	setNonEmpty(v, ParamQuery, p.Query)
	setNonEmpty(v, ParamLocation, p.Location)
	if p.MinPrice > 0 {
		v.Set(ParamMinPrice, strconv.FormatFloat(p.MinPrice, 'f', -1, 64))
	}
	if p.MaxPrice > 0 {
		v.Set(ParamMaxPrice, strconv.FormatFloat(p.MaxPrice, 'f', -1, 64))
	}
	setNonEmpty(v, ParamType, string(p.Type))
	setNonEmpty(v, ParamPropertyType, strings.Join(p.PropertyTypes, ","))
	setNonEmpty(v, ParamAmenities, strings.Join(p.Amenities, ","))
	setNonEmpty(v, ParamFeatures, strings.Join(p.Features, ","))
	if p.SortBy != "" && p.SortBy != SortRecommended {
		v.Set(ParamSort, string(p.SortBy))
	}
	if p.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(p.Page))
	}
	return v
}

func setNonEmpty(v url.Values, key, val string) {
	if val != "" {
		v.Set(key, val)
	}
}

// WithFilter sets (or clears, when value is empty) one filter parameter.
// Changing a filter always returns to the first page.
func (p Params) WithFilter(key, value string) Params {
	v := p.Values()
	if strings.TrimSpace(value) == "" {
		v.Del(key)
	} else {
		v.Set(key, value)
	}
	v.Del(ParamPage)
	return ParseParams(v)
}

// WithSort changes the sort order and returns to the first page.
func (p Params) WithSort(k SortKey) Params {
	p.SortBy = parseSortKey(string(k))
	p.Page = 1
	return p
}

func (p Params) WithPage(n int) Params {
	if n < 1 {
		n = 1
	}
	p.Page = n
	return p
}

// Clear drops every filter but keeps the sort order.
func (p Params) Clear() Params {
	return Params{SortBy: p.SortBy, Page: 1}
}
