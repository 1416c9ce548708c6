package gallery

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single image probe.
const DefaultTimeout = 5 * time.Second

// Prober checks that gallery image URLs actually load. Broken images are
// removed from the gallery instead of being reported.
type Prober struct {
	client  *http.Client
	timeout time.Duration
	log     zerolog.Logger
}

func NewProber(client *http.Client, timeout time.Duration, log zerolog.Logger) *Prober {
	if client == nil {
		client = http.DefaultClient
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Prober{client: client, timeout: timeout, log: log.With().Str("component", "gallery").Logger()}
}

// Filter returns the reachable image URLs of urls in their original order.
func (p *Prober) Filter(ctx context.Context, urls []string) []string {
	ok := make([]bool, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		if strings.TrimSpace(u) == "" {
			continue
		}
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			ok[i] = p.Reachable(ctx, u)
		}(i, u)
	}
	wg.Wait()

	out := make([]string, 0, len(urls))
	for i, u := range urls {
		if ok[i] {
			out = append(out, u)
		}
	}
	return out
}

// Reachable issues a HEAD request, retrying as GET when the host does not
// allow HEAD, and accepts a 2xx answer that is not declared as a non-image.
func (p *Prober) Reachable(ctx context.Context, url string) bool {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	status, ct, err := p.probe(ctx, http.MethodHead, url)
	if err == nil && status == http.StatusMethodNotAllowed {
		status, ct, err = p.probe(ctx, http.MethodGet, url)
	}
	if err != nil {
		p.log.Debug().Err(err).Str("url", url).Msg("image unreachable")
		return false
	}
	if status < 200 || status >= 300 {
		p.log.Debug().Int("status", status).Str("url", url).Msg("image unreachable")
		return false
	}
	return ct == "" || strings.HasPrefix(ct, "image/") || ct == "application/octet-stream"
}

func (p *Prober) probe(ctx context.Context, method, url string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return 0, "", err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	if method == http.MethodGet {
		_, _ = io.CopyN(io.Discard, resp.Body, 512)
	}
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(resp.Header.Get("Content-Type"), ";", 2)[0]))
	return resp.StatusCode, ct, nil
}
