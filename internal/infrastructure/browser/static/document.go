// Package static hosts the beacon on HTML whose layout is spelled out inline,
// without a rendering engine. Element boxes come from the style attribute
// (top, left, width, height in px, display:none) with the width and height
// attributes as fallback. Offsets nest: a child's top/left is relative to its
// parent's box.
package static

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
)

var _ output.Document = (*Document)(nil)

type Layout struct {
	Width  float64
	Height float64
	Scroll entity.Point
}

func DefaultLayout() Layout {
	return Layout{Width: 1280, Height: 800}
}

type Document struct {
	layout   Layout
	elements []entity.ElementSnapshot
}

func Parse(r io.Reader, layout Layout) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	d := &Document{layout: layout}
	d.walk(root, box{})
	return d, nil
}

type box struct {
	top, left float64
	hidden    bool
}

func (d *Document) walk(n *html.Node, parent box) {
	if n.Type == html.ElementNode {
		parent = d.add(n, parent)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		d.walk(c, parent)
	}
}

func (d *Document) add(n *html.Node, parent box) box {
	attrs := make(map[string]string, len(n.Attr))
	for _, a := range n.Attr {
		attrs[strings.ToLower(a.Key)] = a.Val
	}

	style := parseStyle(attrs["style"])
	b := box{
		top:    parent.top + pixels(style["top"]),
		left:   parent.left + pixels(style["left"]),
		hidden: parent.hidden || style["display"] == "none",
	}

	width := dimension(style["width"], attrs["width"])
	height := dimension(style["height"], attrs["height"])

	snap := entity.ElementSnapshot{
		Tag:          n.Data,
		Attrs:        attrs,
		OffsetWidth:  width,
		OffsetHeight: height,
		Rect: &entity.Rect{
			Top:    b.top - d.layout.Scroll.Y,
			Left:   b.left - d.layout.Scroll.X,
			Width:  width,
			Height: height,
		},
	}
	if b.hidden {
		snap.OffsetWidth, snap.OffsetHeight = 0, 0
		snap.Rect = &entity.Rect{}
	}

	d.elements = append(d.elements, snap)
	return b
}

func (d *Document) Viewport() entity.ViewportMetrics {
	return entity.ViewportMetrics{
		InnerWidth:  d.layout.Width,
		InnerHeight: d.layout.Height,
	}
}

func (d *Document) Scroll() entity.ScrollMetrics {
	x, y := d.layout.Scroll.X, d.layout.Scroll.Y
	return entity.ScrollMetrics{PageXOffset: &x, PageYOffset: &y, Root: d.layout.Scroll}
}

func (d *Document) ElementsByTagName(tag string) []output.Element {
	tag = strings.ToLower(tag)
	var out []output.Element
	for _, el := range d.elements {
		if el.TagName() == tag {
			out = append(out, el)
		}
	}
	return out
}

func parseStyle(s string) map[string]string {
	props := make(map[string]string)
	for _, decl := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.ToLower(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(v), "!important")))
		if k != "" {
			props[k] = v
		}
	}
	return props
}

func dimension(style, attr string) float64 {
	if style != "" {
		return pixels(style)
	}
	return pixels(attr)
}

// pixels reads "12", "12px" or "12.5px"; anything else is 0.
func pixels(v string) float64 {
	v = strings.TrimSuffix(strings.TrimSpace(v), "px")
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0
	}
	return f
}
