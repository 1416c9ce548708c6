package admin

import (
	"context"
	"fmt"
	"strings"

	"github.com/denisok6893-rgb/realestate-portal/internal/apiclient"
	"github.com/denisok6893-rgb/realestate-portal/internal/domain"
)

// MergeImages concatenates the lists, dropping blanks and repeated URLs. The
// first occurrence wins, so order is first-seen.
func MergeImages(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, list := range lists {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

type Uploader interface {
	Upload(ctx context.Context, f apiclient.File, folder string) (string, error)
}

// UploadAll uploads files one at a time. On failure it returns the URLs
// uploaded so far together with the error.
func UploadAll(ctx context.Context, up Uploader, files []apiclient.File, folder string) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return urls, err
		}
		u, err := up.Upload(ctx, f, folder)
		if err != nil {
			return urls, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		urls = append(urls, u)
	}
	return urls, nil
}

// AttachImages uploads files, merges them with the row's images and the
// manually entered URLs, and saves the result. Nothing is saved when an
// upload fails.
func (t *Table) AttachImages(ctx context.Context, up Uploader, id int64, manual []string, files []apiclient.File) (domain.Property, error) {
	current, ok := t.Get(id)
	if !ok {
		return domain.Property{}, ErrNotFound
	}
	uploaded, err := UploadAll(ctx, up, files, apiclient.DefaultFolder)
	if err != nil {
		return domain.Property{}, err
	}
	in := domain.InputFrom(current)
	in.Images = MergeImages(current.Images, manual, uploaded)
	if in.MainImage == "" && len(in.Images) > 0 {
		in.MainImage = in.Images[0]
	}
	return t.Update(ctx, id, in)
}
