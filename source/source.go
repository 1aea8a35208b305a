// Package source obtains raw contract text from a remote URL or from the
// filesystem.
package source

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// DefaultTimeout bounds a single remote fetch when no client is supplied.
const DefaultTimeout = 30 * time.Second

// maxBody caps remote documents (16MB).
const maxBody = 16 << 20

// IsRemote reports whether location is fetched over HTTP(S) rather than read
// from the filesystem.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Loader reads locations. The zero value is ready to use.
type Loader struct {
	// HTTPClient performs remote fetches; a client with DefaultTimeout is used when nil.
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// NewLoader creates a loader with the given client and logger.
func NewLoader(client *http.Client, logger *slog.Logger) *Loader {
	return &Loader{HTTPClient: client, Logger: logger}
}

// Load returns the content at location.
func (l *Loader) Load(ctx context.Context, location string) ([]byte, error) {
	if IsRemote(location) {
		return l.Fetch(ctx, location)
	}
	return l.ReadFile(location)
}

// Fetch performs a GET on url. Any non-2xx status is an error.
func (l *Loader) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", url, err)
	}
	resp, err := l.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to fetch %s: unexpected status %s", url, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	if len(data) > maxBody {
		return nil, fmt.Errorf("failed to fetch %s: document exceeds %d bytes", url, maxBody)
	}
	l.logger().Debug("Fetched resource", slog.String("url", url), slog.Int("bytes", len(data)))
	return data, nil
}

// ReadFile reads a filesystem path.
func (l *Loader) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	l.logger().Debug("Read file", slog.String("path", path), slog.Int("bytes", len(data)))
	return data, nil
}

func (l *Loader) client() *http.Client {
	if l.HTTPClient != nil {
		return l.HTTPClient
	}
	return &http.Client{Timeout: DefaultTimeout}
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger != nil {
		return l.Logger
	}
	return slog.Default()
}
