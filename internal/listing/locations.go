package listing

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LocationKeywords maps a location slug from the URL to the substrings that
// identify it in a listing's address text.
type LocationKeywords map[string][]string

// DefaultLocationKeywords returns the built-in dictionary for the neighbourhoods
// the site links to.
func DefaultLocationKeywords() LocationKeywords {
	return LocationKeywords{
		"lekki":           {"lekki"},
		"ikoyi":           {"ikoyi"},
		"victoria-island": {"victoria island", "v.i."},
		"banana-island":   {"banana island"},
		"ajah":            {"ajah"},
		"ikeja":           {"ikeja", "gra ikeja"},
		"yaba":            {"yaba"},
		"surulere":        {"surulere"},
		"magodo":          {"magodo"},
		"abuja":           {"abuja", "fct", "maitama", "asokoro", "wuse"},
		"port-harcourt":   {"port harcourt", "portharcourt"},
	}
}

// LoadLocationKeywords merges a JSON dictionary file over the defaults. The
// defaults are returned together with the error when the file cannot be used.
func LoadLocationKeywords(path string) (LocationKeywords, error) {
	kw := DefaultLocationKeywords()
	if path == "" {
		return kw, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return kw, fmt.Errorf("read location keywords: %w", err)
	}
	var extra map[string][]string
	if err := json.Unmarshal(b, &extra); err != nil {
		return kw, fmt.Errorf("unmarshal location keywords: %w", err)
	}
	for slug, words := range extra {
		kw[strings.ToLower(strings.TrimSpace(slug))] = words
	}
	return kw, nil
}

// Keywords returns the search terms for slug. Unknown slugs fall back to their
// hyphen-separated tokens.
func (k LocationKeywords) Keywords(slug string) []string {
	slug = strings.ToLower(strings.TrimSpace(slug))
	if slug == "" {
		return nil
	}
	if words, ok := k[slug]; ok {
		out := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				out = append(out, w)
			}
		}
		return out
	}
	var out []string
	for _, tok := range strings.Split(slug, "-") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
