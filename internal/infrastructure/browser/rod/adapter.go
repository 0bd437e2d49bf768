package rod

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/infrastructure/logger"
)

var _ output.PageLoader = (*BrowserAdapter)(nil)

const (
	defaultTimeout = 30 * time.Second
	defaultWidth   = 1280
	defaultHeight  = 800
)

var (
	ErrInvalidURL    = errors.New("invalid page url")
	ErrBrowserClosed = errors.New("browser is closed")
)

type BrowserConfig struct {
	Headless  bool
	NoSandbox bool
	// Bin overrides the Chromium binary; empty lets the launcher find or fetch one.
	Bin     string
	Timeout time.Duration
	Width   int
	Height  int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  true,
		NoSandbox: false,
		Timeout:   defaultTimeout,
		Width:     defaultWidth,
		Height:    defaultHeight,
	}
}

type BrowserAdapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      BrowserConfig
	logger   output.LoggerPort

	mu     sync.Mutex
	closed bool
}

func NewBrowserAdapter(ctx context.Context, cfg BrowserConfig, log output.LoggerPort) (*BrowserAdapter, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logger.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = defaultWidth, defaultHeight
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	log.Debug("Browser launched", "headless", cfg.Headless, "width", cfg.Width, "height", cfg.Height)

	return &BrowserAdapter{
		browser:  browser,
		launcher: l,
		cfg:      cfg,
		logger:   log,
	}, nil
}

// Open creates a tab sized to the configured viewport and starts navigating.
// The returned session's WaitLoad blocks until the window load event.
func (b *BrowserAdapter) Open(ctx context.Context, pageURL string) (output.PageSession, error) {
	if err := validateURL(pageURL); err != nil {
		return nil, err
	}

	b.mu.Lock()
	closed := b.closed
	b.mu.Unlock()
	if closed {
		return nil, ErrBrowserClosed
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open tab: %w", err)
	}

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.Width,
		Height:            b.cfg.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("failed to set viewport: %w", err)
	}

	navCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()
	if err := page.Context(navCtx).Navigate(pageURL); err != nil {
		_ = page.Close()
		return nil, fmt.Errorf("navigation failed: %w", err)
	}

	return &pageSession{
		page:    page,
		timeout: b.cfg.Timeout,
		logger:  b.logger.WithField("page", pageURL),
	}, nil
}

func (b *BrowserAdapter) IsReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && b.browser != nil
}

func (b *BrowserAdapter) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true

	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	switch u.Scheme {
	case "http", "https", "file":
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
}
