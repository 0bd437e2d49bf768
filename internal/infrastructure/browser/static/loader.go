package static

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"critical-images-beacon/internal/application/port/output"
	zaplogger "critical-images-beacon/internal/infrastructure/logger"
)

var (
	_ output.PageLoader  = (*Loader)(nil)
	_ output.PageSession = (*session)(nil)
)

var ErrUnsupportedSource = errors.New("unsupported page source")

type Loader struct {
	layout Layout
	client *http.Client
	logger output.LoggerPort
}

func NewLoader(layout Layout, client *http.Client, logger output.LoggerPort) *Loader {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zaplogger.NewNop()
	}
	return &Loader{layout: layout, client: client, logger: logger}
}

// Open accepts a local path, a file:// URL or an http(s):// URL.
func (l *Loader) Open(ctx context.Context, pageURL string) (output.PageSession, error) {
	rc, err := l.source(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	doc, err := Parse(rc, l.layout)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", pageURL, err)
	}

	l.logger.Debug("Static page parsed", "url", pageURL, "elements", len(doc.elements))
	return &session{doc: doc}, nil
}

func (l *Loader) source(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	switch u.Scheme {
	case "":
		return openFile(pageURL)
	case "file":
		return openFile(u.Path)
	case "http", "https":
		return l.fetch(ctx, pageURL)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, u.Scheme)
	}
}

func openFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return f, nil
}

func (l *Loader) fetch(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build page request: %w", err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch page: status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

type session struct {
	doc *Document
}

func (s *session) Document() output.Document {
	return s.doc
}

// WaitLoad returns at once; a parsed document has nothing left to load.
func (s *session) WaitLoad(ctx context.Context) error {
	return ctx.Err()
}

func (s *session) Close() error {
	return nil
}
