package listing

import (
	"sort"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// Sort returns a stably sorted copy of props. Distance sorting is not
// implemented and keeps the input order.
func Sort(props []domain.Property, key SortKey) []domain.Property {
	out := append([]domain.Property(nil), props...)

	var less func(a, b domain.Property) bool
	switch key {
	case SortPriceLow:
		less = func(a, b domain.Property) bool { return a.Price < b.Price }
	case SortPriceHigh:
		less = func(a, b domain.Property) bool { return a.Price > b.Price }
	case SortNewest:
		less = func(a, b domain.Property) bool { return a.Created().After(b.Created()) }
	case SortDistance:
		return out
	default:
		less = recommendedLess
	}

	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

// recommendedLess: visible first, then newest, then highest id.
func recommendedLess(a, b domain.Property) bool {
	if a.Show != b.Show {
		return a.Show
	}
	ca, cb := a.Created(), b.Created()
	if !ca.Equal(cb) {
		return ca.After(cb)
	}
	return a.ID > b.ID
}
