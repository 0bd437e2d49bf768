// Package sink is a local receiver for beacons, meant for eyeballing what a
// scan sends. It logs each beacon and forgets it.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httplog"
	"github.com/rs/zerolog"
)

const maxBodySize = 1 << 20

type Beacon struct {
	PageURL     string
	OptionsHash string
	Hashes      []string
}

type Config struct {
	Addr string
	// OnBeacon, when set, is called for every accepted beacon.
	OnBeacon func(Beacon)
}

type Server struct {
	cfg    Config
	logger zerolog.Logger
	srv    *http.Server
}

func NewServer(cfg Config) *Server {
	s := &Server{
		cfg: cfg,
		logger: httplog.NewLogger("beacon-sink", httplog.Options{
			JSON:    true,
			Concise: true,
		}),
	}
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(httplog.RequestLogger(s.logger))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/*", s.handleBeacon)
	return r
}

func (s *Server) handleBeacon(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		http.Error(w, "malformed beacon", http.StatusBadRequest)
		return
	}
	b, err := parseBeacon(string(body))
	if err != nil {
		http.Error(w, "malformed beacon", http.StatusBadRequest)
		return
	}
	b.PageURL = r.URL.Query().Get("url")

	if b.PageURL == "" || len(b.Hashes) == 0 {
		http.Error(w, "incomplete beacon", http.StatusBadRequest)
		return
	}

	oplog := httplog.LogEntry(r.Context())
	oplog.Info().
		Str("page_url", b.PageURL).
		Str("options_hash", b.OptionsHash).
		Strs("critical_images", b.Hashes).
		Msg("beacon received")

	if s.cfg.OnBeacon != nil {
		s.cfg.OnBeacon(b)
	}
	w.WriteHeader(http.StatusNoContent)
}

// parseBeacon reads oh and ci from the raw body. oh is sent verbatim. The ci
// list is split before unescaping so an escaped comma stays inside its hash;
// PathUnescape keeps '+' literal, as encodeURIComponent does.
func parseBeacon(body string) (Beacon, error) {
	var b Beacon
	for _, pair := range strings.Split(body, "&") {
		key, value, _ := strings.Cut(pair, "=")
		switch key {
		case "oh":
			b.OptionsHash = value
		case "ci":
			if value == "" {
				continue
			}
			for _, raw := range strings.Split(value, ",") {
				h, err := url.PathUnescape(raw)
				if err != nil {
					return Beacon{}, fmt.Errorf("critical image hash %q: %w", raw, err)
				}
				b.Hashes = append(b.Hashes, h)
			}
		}
	}
	return b, nil
}

// ListenAndServe runs until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", s.cfg.Addr).Msg("beacon sink listening")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("sink server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	}
}
