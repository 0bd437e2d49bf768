package output

import "critical-images-beacon/internal/domain/entity"

// Element is the read-only DOM surface the beacon needs from a candidate.
type Element interface {
	TagName() string
	Attribute(name string) (string, bool)
	OffsetSize() (width, height float64)
	// BoundingClientRect reports false when the host cannot measure the element.
	BoundingClientRect() (entity.Rect, bool)
}

type Document interface {
	Viewport() entity.ViewportMetrics
	Scroll() entity.ScrollMetrics
	ElementsByTagName(tag string) []Element
}
