package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// DefaultFolder is where property images are stored.
const DefaultFolder = "properties"

// File is one local file to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// SignedUpload is the API's answer to a signing request: where to PUT the
// bytes, and the public URL the file will have afterwards.
type SignedUpload struct {
	UploadURL string `json:"uploadUrl"`
	FileURL   string `json:"fileUrl"`
}

type signRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	Folder      string `json:"folder"`
}

// NormalizeFileName prefixes a random id and reduces the name to lowercase
// hyphen-separated ASCII, keeping the extension.
func NormalizeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	stem := strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))

	var b strings.Builder
	dash := false
	for _, r := range stem {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	clean := strings.TrimRight(b.String(), "-")
	if clean == "" {
		clean = "file"
	}
	if ext == "." {
		ext = ""
	}
	return uuid.NewString() + "-" + clean + ext
}

func contentTypeFor(f File) string {
	if f.ContentType != "" {
		return f.ContentType
	}
	if t := mime.TypeByExtension(strings.ToLower(filepath.Ext(f.Name))); t != "" {
		return t
	}
	return "application/octet-stream"
}

// SignUpload asks the API for a pre-signed PUT URL.
func (c *Client) SignUpload(ctx context.Context, fileName, contentType, folder string) (SignedUpload, error) {
	var out SignedUpload
	in := signRequest{FileName: fileName, ContentType: contentType, Folder: folder}
	if err := c.do(ctx, http.MethodPost, "/uploads/signed-url", in, &out); err != nil {
		return SignedUpload{}, err
	}
	if out.UploadURL == "" || out.FileURL == "" {
		return SignedUpload{}, fmt.Errorf("sign upload %s: incomplete response", fileName)
	}
	return out, nil
}

// Upload runs the two-step handshake for one file and returns its public URL.
// The storage PUT carries no API credentials.
func (c *Client) Upload(ctx context.Context, f File, folder string) (string, error) {
	if folder == "" {
		folder = DefaultFolder
	}
	name := NormalizeFileName(f.Name)
	ct := contentTypeFor(f)

	signed, err := c.SignUpload(ctx, name, ct, folder)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signed.UploadURL, bytes.NewReader(f.Data))
	if err != nil {
		return "", fmt.Errorf("build upload %s: %w", name, err)
	}
	req.Header.Set("Content-Type", ct)

	resp, err := c.storage.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return "", &APIError{Status: resp.StatusCode, Message: "upload to storage failed"}
	}
	c.log.Info().Str("file", name).Int("bytes", len(f.Data)).Msg("uploaded")
	return signed.FileURL, nil
}
