package entity

import "strings"

type Rect struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ViewportMetrics holds every source a browser may report the viewport through.
type ViewportMetrics struct {
	InnerWidth           float64 `json:"innerWidth"`
	InnerHeight          float64 `json:"innerHeight"`
	DocumentClientWidth  float64 `json:"documentClientWidth"`
	DocumentClientHeight float64 `json:"documentClientHeight"`
	BodyClientWidth      float64 `json:"bodyClientWidth"`
	BodyClientHeight     float64 `json:"bodyClientHeight"`
}

// Size picks the first non-zero source for each dimension.
func (m ViewportMetrics) Size() WindowSize {
	return WindowSize{
		Height: firstNonZero(m.InnerHeight, m.DocumentClientHeight, m.BodyClientHeight),
		Width:  firstNonZero(m.InnerWidth, m.DocumentClientWidth, m.BodyClientWidth),
	}
}

// ScrollMetrics mirrors window.pageXOffset/pageYOffset, which older engines
// leave undefined, and the scroll position of the root scrolling element.
type ScrollMetrics struct {
	PageXOffset *float64 `json:"pageXOffset,omitempty"`
	PageYOffset *float64 `json:"pageYOffset,omitempty"`
	Root        Point    `json:"root"`
}

// Offset resolves each axis on its own: the page offset when defined, else
// the root element's scroll position.
func (s ScrollMetrics) Offset() Point {
	off := s.Root
	if s.PageXOffset != nil {
		off.X = *s.PageXOffset
	}
	if s.PageYOffset != nil {
		off.Y = *s.PageYOffset
	}
	return off
}

type ElementSnapshot struct {
	Tag          string            `json:"tag"`
	Attrs        map[string]string `json:"attrs"`
	OffsetWidth  float64           `json:"offsetWidth"`
	OffsetHeight float64           `json:"offsetHeight"`
	Rect         *Rect             `json:"rect,omitempty"`
}

func (e ElementSnapshot) TagName() string {
	return strings.ToLower(e.Tag)
}

func (e ElementSnapshot) Attribute(name string) (string, bool) {
	v, ok := e.Attrs[strings.ToLower(name)]
	return v, ok
}

func (e ElementSnapshot) OffsetSize() (width, height float64) {
	return e.OffsetWidth, e.OffsetHeight
}

func (e ElementSnapshot) BoundingClientRect() (Rect, bool) {
	if e.Rect == nil {
		return Rect{}, false
	}
	return *e.Rect, true
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
