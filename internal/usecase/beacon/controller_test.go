package beacon

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"critical-images-beacon/internal/domain/entity"
	"critical-images-beacon/internal/infrastructure/eventloop"
	"critical-images-beacon/internal/infrastructure/logger"
)

var testConfig = entity.BeaconConfig{
	BeaconURL:   "http://beacon.example/mod_pagespeed_beacon",
	HTMLURL:     "http://site.example/index.html",
	OptionsHash: "H123",
}

func newController(doc *fakeDocument, transport *fakeTransport) *Controller {
	return New(Env{
		Document:  doc,
		Transport: transport,
		Logger:    logger.NewNop(),
	}, testConfig)
}

func TestIsCritical_ZeroArea(t *testing.T) {
	c := newController(newDocument(800, 600), &fakeTransport{})

	assert.False(t, c.IsCritical(img("a", 0, 0, 0, 0)))
	assert.False(t, c.IsCritical(img("b", 10, 10, -1, 0)))
	// zero-area elements do not claim their location
	assert.True(t, c.IsCritical(img("c", 0, 0, 10, 10)))
}

func TestIsCritical_OneDimensionIsEnough(t *testing.T) {
	c := newController(newDocument(800, 600), &fakeTransport{})

	assert.True(t, c.IsCritical(img("a", 0, 0, 0, 5)))
	assert.True(t, c.IsCritical(img("b", 1, 1, 5, 0)))
}

func TestIsCritical_DuplicateLocation(t *testing.T) {
	c := newController(newDocument(800, 600), &fakeTransport{})

	assert.True(t, c.IsCritical(img("a", 20, 30, 10, 10)))
	assert.False(t, c.IsCritical(img("b", 20, 30, 50, 50)))
	assert.True(t, c.IsCritical(img("c", 30, 20, 10, 10)))
}

func TestIsCritical_Bounds(t *testing.T) {
	tests := []struct {
		name      string
		top, left float64
		want      bool
	}{
		{"origin", 0, 0, true},
		{"on bottom edge", 600, 10, true},
		{"on right edge", 10, 800, true},
		{"below", 601, 0, false},
		{"right of", 0, 800.5, false},
		{"above origin", -50, 0, true},
		{"left of origin", 0, -50, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newController(newDocument(800, 600), &fakeTransport{})
			assert.Equal(t, tt.want, c.IsCritical(img("x", tt.top, tt.left, 10, 10)))
		})
	}
}

func TestIsCritical_AddsScrollOffset(t *testing.T) {
	doc := newDocument(800, 600)
	y := 550.0
	doc.scroll = entity.ScrollMetrics{PageYOffset: &y}
	c := newController(doc, &fakeTransport{})

	// client rect 100 below the scrolled viewport top lands at 650 in the document
	assert.False(t, c.IsCritical(img("a", 100, 0, 10, 10)))
	assert.True(t, c.IsCritical(img("b", 40, 0, 10, 10)))
}

func TestIsCritical_ScrollDedupUsesDocumentCoordinates(t *testing.T) {
	doc := newDocument(800, 600)
	c := newController(doc, &fakeTransport{})
	require.True(t, c.IsCritical(img("a", 50, 0, 10, 10)))

	doc.scroll = entity.ScrollMetrics{Root: entity.Point{Y: 25}}
	assert.False(t, c.IsCritical(img("b", 25, 0, 10, 10)))
}

func TestNew_CapturesWindowOnce(t *testing.T) {
	doc := newDocument(800, 600)
	c := newController(doc, &fakeTransport{})

	doc.viewport = entity.ViewportMetrics{InnerWidth: 100, InnerHeight: 100}
	assert.Equal(t, entity.WindowSize{Height: 600, Width: 800}, c.WindowSize())
	assert.True(t, c.IsCritical(img("a", 500, 500, 10, 10)))
}

func TestCheckCriticalImages_SingleImage(t *testing.T) {
	transport := &fakeTransport{available: true}
	observer := &recordingObserver{}
	c := New(Env{
		Document:  newDocument(800, 600, img("abc", 0, 0, 100, 100)),
		Transport: transport,
		Observer:  observer,
	}, testConfig)

	assert.Equal(t, entity.BeaconStateInitialized, c.State())
	res := c.CheckCriticalImages(context.Background())

	assert.Equal(t, entity.BeaconStateFired, c.State())
	assert.Equal(t, "oh=H123&ci=abc", res.Payload)
	assert.True(t, res.Sent)
	assert.Equal(t, []string{"abc"}, res.Critical)
	require.Len(t, transport.sent, 1)
	assert.Equal(t, sentBeacon{testConfig.BeaconURL, testConfig.HTMLURL, "oh=H123&ci=abc"}, transport.sent[0])
	assert.Equal(t, []string{"oh=H123&ci=abc"}, observer.payloads)
}

func TestCheckCriticalImages_NothingCritical(t *testing.T) {
	transport := &fakeTransport{available: true}
	observer := &recordingObserver{}
	doc := newDocument(800, 600,
		element("input", "", 0, 0, 10, 10),
		img("xyz", 900, 0, 10, 10),
	)
	c := New(Env{Document: doc, Transport: transport, Observer: observer}, testConfig)

	res := c.CheckCriticalImages(context.Background())

	assert.Empty(t, transport.sent)
	assert.Empty(t, observer.payloads)
	assert.Empty(t, res.Payload)
	assert.False(t, res.Sent)
	assert.Equal(t, entity.BeaconStateFired, res.State)
}

func TestCheckCriticalImages_OrderAndDuplicates(t *testing.T) {
	transport := &fakeTransport{available: true}
	doc := newDocument(800, 600,
		element("input", "in1", 0, 400, 10, 10),
		img("a", 0, 0, 10, 10),
		img("b", 0, 10, 10, 10),
		img("a", 0, 20, 10, 10),
		img("c", 0, 10, 10, 10), // stacked on b
		img("d", 700, 0, 10, 10),
		img("e", 5, 5, 0, 0),
		img("", 0, 30, 10, 10),
	)
	c := newController(doc, transport)

	res := c.CheckCriticalImages(context.Background())

	assert.Equal(t, []string{"a", "b", "in1"}, res.Critical)
	assert.Equal(t, "oh=H123&ci=a,b,in1", res.Payload)
}

func TestCheckCriticalImages_DuplicateHashStillClaimsLocation(t *testing.T) {
	doc := newDocument(800, 600,
		img("a", 0, 0, 10, 10),
		img("a", 0, 50, 10, 10),
		img("b", 0, 50, 10, 10),
	)
	c := newController(doc, &fakeTransport{available: true})

	res := c.CheckCriticalImages(context.Background())
	assert.Equal(t, []string{"a"}, res.Critical)
}

func TestCheckCriticalImages_SkipsUnmeasurable(t *testing.T) {
	unmeasurable := img("a", 0, 0, 10, 10)
	unmeasurable.Rect = nil
	doc := newDocument(800, 600, unmeasurable, img("b", 0, 0, 10, 10))
	c := newController(doc, &fakeTransport{available: true})

	res := c.CheckCriticalImages(context.Background())
	assert.Equal(t, []string{"b"}, res.Critical)
}

func TestCheckCriticalImages_EncodesHashes(t *testing.T) {
	doc := newDocument(800, 600, img("a b", 0, 0, 10, 10), img("x/y", 0, 10, 10, 10))
	c := newController(doc, &fakeTransport{available: true})

	res := c.CheckCriticalImages(context.Background())
	assert.Equal(t, "oh=H123&ci=a%20b,x%2Fy", res.Payload)
}

func TestCheckCriticalImages_TransportUnavailable(t *testing.T) {
	observer := &recordingObserver{}
	c := New(Env{
		Document:  newDocument(800, 600, img("abc", 0, 0, 1, 1)),
		Transport: &fakeTransport{available: false},
		Observer:  observer,
	}, testConfig)

	res := c.CheckCriticalImages(context.Background())
	assert.False(t, res.Sent)
	assert.Equal(t, "oh=H123&ci=abc", res.Payload)
	assert.Len(t, observer.payloads, 1)
}

func TestCheckCriticalImages_FiresOnce(t *testing.T) {
	transport := &fakeTransport{available: true}
	c := newController(newDocument(800, 600, img("abc", 0, 0, 1, 1)), transport)

	first := c.CheckCriticalImages(context.Background())
	second := c.CheckCriticalImages(context.Background())

	assert.Equal(t, first, second)
	assert.Len(t, transport.sent, 1)
}

func TestBuildPayload_Empty(t *testing.T) {
	assert.Empty(t, BuildPayload("H", nil))
}

func TestBuildPayload_Cap(t *testing.T) {
	hashes := make([]string, 0, 20000)
	for i := 0; i < 20000; i++ {
		hashes = append(hashes, fmt.Sprintf("%010d", i))
	}

	data := BuildPayload("H123", hashes)

	require.LessOrEqual(t, len(data), entity.MaxPayloadSize)
	require.True(t, strings.HasPrefix(data, "oh=H123&ci="))

	included := strings.Split(strings.TrimPrefix(data, "oh=H123&ci="), ",")
	assert.Equal(t, hashes[:len(included)], included, "included hashes must be a prefix")
	assert.Greater(t, len(data)+11, entity.MaxPayloadSize, "stops only when the next token does not fit")
}

func TestBuildPayload_ExactFit(t *testing.T) {
	prefix := len("oh=H&ci=a")
	last := strings.Repeat("z", entity.MaxPayloadSize-prefix-1)

	data := BuildPayload("H", []string{"a", last, "b"})
	assert.Len(t, data, entity.MaxPayloadSize)
	assert.True(t, strings.HasSuffix(data, ","+last))
}

func TestBuildPayload_FirstHashAlwaysIncluded(t *testing.T) {
	huge := strings.Repeat("q", entity.MaxPayloadSize)
	data := BuildPayload("H", []string{huge, "b"})
	assert.Equal(t, "oh=H&ci="+huge, data)
}

func TestInit_ScansAfterLoadAndYield(t *testing.T) {
	loop := eventloop.New()
	transport := &fakeTransport{available: true}
	doc := newDocument(800, 600, img("abc", 0, 0, 100, 100))

	c := Init(context.Background(), Env{
		Document:  doc,
		Events:    loop,
		Scheduler: loop,
		Transport: transport,
	}, testConfig.BeaconURL, testConfig.HTMLURL, "H123")

	assert.Zero(t, loop.RunUntilIdle(), "nothing runs before load")
	assert.Equal(t, entity.BeaconStateInitialized, c.State())

	var stateDuringLoad entity.BeaconState
	loop.AddHandler(entity.EventLoad, func() { stateDuringLoad = c.State() })
	loop.Dispatch(entity.EventLoad)
	assert.Equal(t, 2, loop.RunUntilIdle())

	assert.Equal(t, entity.BeaconStateInitialized, stateDuringLoad, "scan is deferred past the load handlers")
	assert.Equal(t, entity.BeaconStateFired, c.State())
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "oh=H123&ci=abc", transport.sent[0].data)
}
