package artifact

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
)

// HTTPStore publishes artifacts with an HTTP PUT to <base URL>/<name>, the
// shape object stores expose through pre-signed or gateway upload URLs.
// Credential handling stays with the remote endpoint.
type HTTPStore struct {
	name    string
	baseURL string
	client  *http.Client
}

// NewHTTPStore returns an HTTPStore uploading under baseURL. A nil client
// falls back to a shared default client so TCP connections are reused
// across uploads.
func NewHTTPStore(name, baseURL string, client *http.Client) *HTTPStore {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPStore{name: name, baseURL: baseURL, client: client}
}

// Name implements Store.
func (s *HTTPStore) Name() string { return s.name }

// Put streams the source file to the upload URL. The request carries the
// file's size and a content type guessed from its extension, defaulting to
// an opaque octet stream for extensionless binaries.
func (s *HTTPStore) Put(ctx context.Context, name, sourcePath string) error {
	file, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact source %s: %w", sourcePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact source %s: %w", sourcePath, err)
	}

	uploadURL, err := url.JoinPath(s.baseURL, name)
	if err != nil {
		return fmt.Errorf("invalid upload URL for %s: %w", name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("upload of %s failed: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("upload of %s rejected with status %d: %s", name, resp.StatusCode, body)
	}
	return nil
}
