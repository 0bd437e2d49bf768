package beacon

import (
	"context"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
)

type fakeDocument struct {
	viewport entity.ViewportMetrics
	scroll   entity.ScrollMetrics
	elements []entity.ElementSnapshot
}

func newDocument(width, height float64, elements ...entity.ElementSnapshot) *fakeDocument {
	return &fakeDocument{
		viewport: entity.ViewportMetrics{InnerWidth: width, InnerHeight: height},
		elements: elements,
	}
}

func (d *fakeDocument) Viewport() entity.ViewportMetrics { return d.viewport }
func (d *fakeDocument) Scroll() entity.ScrollMetrics     { return d.scroll }

func (d *fakeDocument) ElementsByTagName(tag string) []output.Element {
	var out []output.Element
	for _, el := range d.elements {
		if el.TagName() == tag {
			out = append(out, el)
		}
	}
	return out
}

type sentBeacon struct {
	beaconURL string
	htmlURL   string
	data      string
}

type fakeTransport struct {
	available bool
	sent      []sentBeacon
}

func (t *fakeTransport) SendBeacon(_ context.Context, beaconURL, htmlURL, data string) bool {
	if !t.available {
		return false
	}
	t.sent = append(t.sent, sentBeacon{beaconURL, htmlURL, data})
	return true
}

type recordingObserver struct {
	payloads []string
}

func (o *recordingObserver) ObservePayload(_ entity.BeaconConfig, payload string) {
	o.payloads = append(o.payloads, payload)
}

func img(hash string, top, left, width, height float64) entity.ElementSnapshot {
	return element("img", hash, top, left, width, height)
}

func element(tag, hash string, top, left, width, height float64) entity.ElementSnapshot {
	attrs := map[string]string{}
	if hash != "" {
		attrs[entity.HashAttribute] = hash
	}
	return entity.ElementSnapshot{
		Tag:          tag,
		Attrs:        attrs,
		OffsetWidth:  width,
		OffsetHeight: height,
		Rect:         &entity.Rect{Top: top, Left: left, Width: width, Height: height},
	}
}
