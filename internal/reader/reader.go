package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/grekov/survfit/internal/model"
)

// Loader reads a dataset from a local file or an http(s) URL
type Loader struct {
	httpClient *http.Client
	maxBytes   int64
	adapters   []Adapter
}

// NewLoader creates a loader with the given per-source timeout and byte cap
func NewLoader(timeout time.Duration, maxBytes int64) *Loader {
	return &Loader{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		adapters: defaultAdapters(),
	}
}

// LoadResult contains the parsed dataset, its raw bytes (for cache keying)
// and source metadata
type LoadResult struct {
	Dataset *model.Dataset
	Raw     []byte
	Subject string
	Source  string
	Format  string
}

// Load reads and parses the named source. Sources starting with http://
// or https:// are fetched; everything else is treated as a file path.
func (l *Loader) Load(ctx context.Context, source string) (*LoadResult, error) {
	var raw []byte
	var err error

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		raw, err = l.fetch(ctx, source)
	} else {
		raw, err = l.readFile(source)
	}
	if err != nil {
		return nil, err
	}

	adapter := selectAdapter(l.adapters, source)
	if adapter == nil {
		return nil, fmt.Errorf("load %s: no adapter for source", source)
	}

	records, err := adapter.Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	ds, err := model.NewDataset(records)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", source, err)
	}

	return &LoadResult{
		Dataset: ds,
		Raw:     raw,
		Subject: extractSubject(source),
		Source:  source,
		Format:  adapter.Name(),
	}, nil
}

// readFile reads a local file up to the byte cap
func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// fetch retrieves a remote source with a size limit
func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return data, nil
}

// extractSubject derives a human-readable subject from the source name
func extractSubject(source string) string {
	name := source
	if parsed, err := url.Parse(source); err == nil && parsed.Path != "" {
		name = parsed.Path
	}

	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ReplaceAll(base, "_", " ")
	base = strings.ReplaceAll(base, "-", " ")
	if base == "" || base == "." {
		return source
	}
	return base
}
