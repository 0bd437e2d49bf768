package entity

import "strconv"

const (
	// HashAttribute carries the rewriter-assigned identifier of an image URL.
	HashAttribute = "pagespeed_url_hash"

	// MaxPayloadSize caps the beacon body.
	MaxPayloadSize = 131072

	EventLoad = "load"
)

// CandidateTags are scanned in this order, elements in document order.
var CandidateTags = []string{"img", "input"}

type BeaconConfig struct {
	BeaconURL   string `json:"beacon_url" yaml:"beacon_url"`
	HTMLURL     string `json:"html_url" yaml:"html_url"`
	OptionsHash string `json:"options_hash" yaml:"options_hash"`
}

type WindowSize struct {
	Height float64 `json:"height"`
	Width  float64 `json:"width"`
}

// Contains reports whether a top-left corner lies inside the window.
// Only coordinates beyond the far edges are outside; negative values are not.
func (w WindowSize) Contains(loc Location) bool {
	return loc.Top <= w.Height && loc.Left <= w.Width
}

type Location struct {
	Top  float64
	Left float64
}

// Key formats the location the way a JS number converts to string.
func (l Location) Key() LocationKey {
	return LocationKey(formatNumber(l.Top) + "," + formatNumber(l.Left))
}

type LocationKey string

type BeaconState string

const (
	BeaconStateInitialized BeaconState = "initialized"
	BeaconStateFired       BeaconState = "fired"
)

type BeaconResult struct {
	State    BeaconState `json:"state"`
	Critical []string    `json:"critical"`
	Payload  string      `json:"payload,omitempty"`
	Sent     bool        `json:"sent"`
}

func formatNumber(v float64) string {
	if v == 0 {
		// -0 prints as "0" in JS
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
