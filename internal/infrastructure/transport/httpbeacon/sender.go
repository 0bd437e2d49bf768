package httpbeacon

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
	"critical-images-beacon/internal/infrastructure/logger"
)

var _ output.BeaconTransport = (*Sender)(nil)

const (
	contentType    = "application/x-www-form-urlencoded"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Timeout: defaultTimeout}
}

// Sender posts beacons without waiting for, or looking at, the response.
type Sender struct {
	client *http.Client
	logger output.LoggerPort
	wg     sync.WaitGroup
}

func NewSender(client *http.Client, logger output.LoggerPort) *Sender {
	return &Sender{client: client, logger: logger}
}

func NewHTTPClient(cfg Config) *http.Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &http.Client{Timeout: cfg.Timeout}
}

// BeaconURL appends the reported page as the url query parameter.
func BeaconURL(beaconURL, htmlURL string) string {
	sep := "?"
	if strings.Contains(beaconURL, "?") {
		sep = "&"
	}
	return beaconURL + sep + "url=" + entity.EncodeURIComponent(htmlURL)
}

func (s *Sender) SendBeacon(ctx context.Context, beaconURL, htmlURL, data string) bool {
	if s == nil || s.client == nil {
		return false
	}

	target := BeaconURL(beaconURL, htmlURL)
	// the request outlives the page scan that issued it
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, target, strings.NewReader(data))
	if err != nil {
		s.log().Warn("Beacon request unavailable", "url", target, "error", err)
		return false
	}
	req.Header.Set("Content-Type", contentType)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.do(req)
	}()
	return true
}

func (s *Sender) do(req *http.Request) {
	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		s.log().Debug("Beacon send failed", "url", req.URL.String(), "error", err)
		return
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	s.log().Debug("Beacon sent",
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

// Wait blocks until every in-flight beacon finished.
func (s *Sender) Wait() {
	s.wg.Wait()
}

func (s *Sender) log() output.LoggerPort {
	if s.logger == nil {
		return logger.NewNop()
	}
	return s.logger
}
