package listing

import (
	"strconv"
	"strings"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

type predicate func(domain.Property) bool

// predicates builds the active filters for p. Each one is a pure function of a
// single record.
func predicates(p Params, kw LocationKeywords, visibleOnly bool) []predicate {
	var out []predicate
	if visibleOnly {
		out = append(out, func(r domain.Property) bool { return r.Show })
	}
	if q := strings.ToLower(p.Query); q != "" {
		out = append(out, func(r domain.Property) bool { return matchText(r, q) })
	}
	if words := kw.Keywords(p.Location); len(words) > 0 {
		out = append(out, func(r domain.Property) bool { return matchLocation(r, words) })
	}
	if p.MinPrice > 0 || p.MaxPrice > 0 {
		minP, maxP := p.MinPrice, p.MaxPrice
		out = append(out, func(r domain.Property) bool { return matchPrice(r.Price, minP, maxP) })
	}
	switch p.Type {
	case TypeRent:
		out = append(out, func(r domain.Property) bool { return r.IsForRent })
	case TypeSale:
		out = append(out, func(r domain.Property) bool { return !r.IsForRent })
	}
	if tags := p.PropertyTypes; len(tags) > 0 {
		out = append(out, func(r domain.Property) bool { return containsAny(r.PropertyType, tags) })
	}
	if tags := p.Amenities; len(tags) > 0 {
		out = append(out, func(r domain.Property) bool { return containsAll(r.Amenities, tags) })
	}
	if tags := p.Features; len(tags) > 0 {
		out = append(out, func(r domain.Property) bool { return containsAll(r.Features, tags) })
	}
	return out
}

// matchText searches the textual fields of a listing: description, address and city.
func matchText(r domain.Property, q string) bool {
	return strings.Contains(strings.ToLower(r.Description), q) ||
		strings.Contains(strings.ToLower(r.Address), q) ||
		strings.Contains(strings.ToLower(r.City), q)
}

func matchLocation(r domain.Property, words []string) bool {
	parts := []string{r.Address, r.City, r.State, r.Location}
	if r.Area > 0 {
		parts = append(parts, strconv.FormatFloat(r.Area, 'f', -1, 64))
	}
	hay := strings.ToLower(strings.Join(parts, " "))
	for _, w := range words {
		if strings.Contains(hay, w) {
			return true
		}
	}
	return false
}

// matchPrice applies an inclusive range; a zero bound is not applied.
func matchPrice(price, minP, maxP float64) bool {
	if minP > 0 && price < minP {
		return false
	}
	if maxP > 0 && price > maxP {
		return false
	}
	return true
}

// An absent field never matches a requested tag.
func containsAny(field string, tags []string) bool {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		return false
	}
	for _, t := range tags {
		if strings.Contains(f, t) {
			return true
		}
	}
	return false
}

func containsAll(field string, tags []string) bool {
	f := strings.ToLower(strings.TrimSpace(field))
	if f == "" {
		return false
	}
	for _, t := range tags {
		if !strings.Contains(f, t) {
			return false
		}
	}
	return true
}

func applyFilters(props []domain.Property, preds []predicate) []domain.Property {
	out := make([]domain.Property, 0, len(props))
next:
	for _, p := range props {
		for _, keep := range preds {
			if !keep(p) {
				continue next
			}
		}
		out = append(out, p)
	}
	return out
}
