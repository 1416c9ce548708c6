package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"time"
)

// ListingPrefix namespaces every cached listing page, so any admin write can
// drop them together.
const ListingPrefix = "listing"

// Cache stores JSON-encodable listing responses for a short time.
type Cache interface {
	// Get decodes the cached value into dest and reports whether it was found.
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Invalidate drops every key starting with prefix.
	Invalidate(ctx context.Context, prefix string) error
}

// QueryKey builds a stable key from a prefix and query values: parameters are
// sorted so that equivalent URLs share an entry.
func QueryKey(prefix string, q url.Values) string {
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(":")
		}
		vals := append([]string(nil), q[k]...)
		sort.Strings(vals)
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(strings.Join(vals, ","))
	}

	sum := md5.Sum([]byte(b.String()))
	return prefix + ":" + hex.EncodeToString(sum[:])
}

// Nop never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, any) (bool, error)        { return false, nil }
func (Nop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Nop) Invalidate(context.Context, string) error              { return nil }
