package card

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// PlaceholderImage is shown when a listing has no usable image.
const PlaceholderImage = "/images/property-placeholder.jpg"

const (
	StatusSold    = "Sold"
	StatusRented  = "Rented"
	StatusForRent = "For Rent"
	StatusForSale = "For Sale"
)

const maxAmenityFeatures = 3

// Card is the display-ready projection of a Property. It is recomputed from the
// backend record every time and never written back.
type Card struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Image      string    `json:"image"`
	PriceLabel string    `json:"priceLabel"`
	Status     string    `json:"status"`
	Address    string    `json:"address"`
	Location   string    `json:"location"`
	Agent      Agent     `json:"agent"`
	Features   []Feature `json:"features"`
	Visible    bool      `json:"visible"`
}

type Agent struct {
	Name   string `json:"name"`
	Phone  string `json:"phone"`
	Avatar string `json:"avatar,omitempty"`
}

type Feature struct {
	Icon  string `json:"icon"`
	Label string `json:"label"`
}

var naira = message.NewPrinter(language.English)

// ResolveStatus derives the single status label: sold, then rented, then for rent,
// otherwise for sale.
func ResolveStatus(p domain.Property) string {
	switch {
	case p.Sold:
		return StatusSold
	case p.Rented:
		return StatusRented
	case p.IsForRent:
		return StatusForRent
	default:
		return StatusForSale
	}
}

// FormatPrice renders a whole-naira amount with thousands separators, adding
// "/mo" for rentals.
func FormatPrice(price float64, forRent bool) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		price = 0
	}
	label := "₦" + naira.Sprintf("%d", int64(math.Round(price)))
	if forRent {
		label += "/mo"
	}
	return label
}

// PickImage prefers main_image, then the first non-empty gallery image.
func PickImage(p domain.Property) string {
	if s := strings.TrimSpace(p.MainImage); s != "" {
		return s
	}
	for _, img := range p.Images {
		if s := strings.TrimSpace(img); s != "" {
			return s
		}
	}
	return PlaceholderImage
}

// FromProperty maps a backend record to a card. Missing fields degrade to
// empty values; there is no error path.
func FromProperty(p domain.Property) Card {
	return Card{
		ID:         p.ID,
		Title:      title(p),
		Image:      PickImage(p),
		PriceLabel: FormatPrice(p.Price, p.IsForRent),
		Status:     ResolveStatus(p),
		Address:    strings.TrimSpace(p.Address),
		Location:   joinNonEmpty(", ", p.City, p.State),
		Agent: Agent{
			Name:  strings.TrimSpace(p.Owner),
			Phone: strings.TrimSpace(p.OwnerPhone),
		},
		Features: features(p),
		Visible:  p.Show,
	}
}

func FromProperties(props []domain.Property) []Card {
	out := make([]Card, 0, len(props))
	for _, p := range props {
		out = append(out, FromProperty(p))
	}
	return out
}

func title(p domain.Property) string {
	if t := strings.TrimSpace(p.PropertyType); t != "" {
		if loc := joinNonEmpty(", ", p.Location, p.City); loc != "" {
			return t + " in " + loc
		}
		return t
	}
	if a := strings.TrimSpace(p.Address); a != "" {
		return a
	}
	return joinNonEmpty(", ", p.City, p.State)
}

func features(p domain.Property) []Feature {
	var out []Feature
	if p.Area > 0 {
		out = append(out, Feature{Icon: "area", Label: strconv.FormatFloat(p.Area, 'f', -1, 64) + " sqm"})
	}
	if t := strings.TrimSpace(p.PropertyType); t != "" {
		out = append(out, Feature{Icon: "home", Label: t})
	}
	n := 0
	for _, a := range strings.Split(p.Amenities, ",") {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		out = append(out, Feature{Icon: "check", Label: a})
		n++
		if n == maxAmenityFeatures {
			break
		}
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, s := range parts {
		if s = strings.TrimSpace(s); s != "" {
			kept = append(kept, s)
		}
	}
	return strings.Join(kept, sep)
}
