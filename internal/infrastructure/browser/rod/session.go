package rod

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/goccy/go-json"
	"github.com/ysmood/gson"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
)

var (
	_ output.PageSession = (*pageSession)(nil)
	_ output.Document    = (*liveDocument)(nil)
)

type pageSession struct {
	page    *rod.Page
	timeout time.Duration
	logger  output.LoggerPort
}

func (s *pageSession) Document() output.Document {
	return &liveDocument{page: s.page, timeout: s.timeout, logger: s.logger}
}

func (s *pageSession) WaitLoad(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := s.page.Context(ctx).WaitLoad(); err != nil {
		return fmt.Errorf("wait for load: %w", err)
	}
	return nil
}

func (s *pageSession) Close() error {
	return s.page.Close()
}

// liveDocument reads the DOM of a rendered page through JS evaluation. Failed
// reads degrade to empty values and are logged.
type liveDocument struct {
	page    *rod.Page
	timeout time.Duration
	logger  output.LoggerPort
}

func (d *liveDocument) Viewport() entity.ViewportMetrics {
	var m entity.ViewportMetrics
	d.eval(&m, viewportJS)
	return m
}

func (d *liveDocument) Scroll() entity.ScrollMetrics {
	var m entity.ScrollMetrics
	d.eval(&m, scrollJS)
	return m
}

func (d *liveDocument) ElementsByTagName(tag string) []output.Element {
	var snaps []entity.ElementSnapshot
	if !d.eval(&snaps, elementsJS, tag) {
		return nil
	}

	out := make([]output.Element, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, s)
	}
	return out
}

func (d *liveDocument) eval(dst any, js string, args ...any) bool {
	p := d.page.Timeout(d.timeout)
	defer p.CancelTimeout()

	res, err := p.Eval(js, args...)
	if err != nil {
		d.logger.Warn("Page evaluation failed", "error", err)
		return false
	}
	if err := decode(res.Value, dst); err != nil {
		d.logger.Warn("Page evaluation result undecodable", "error", err)
		return false
	}
	return true
}

func decode(v gson.JSON, dst any) error {
	raw, err := v.MarshalJSON()
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}
