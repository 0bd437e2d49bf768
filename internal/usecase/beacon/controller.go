package beacon

import (
	"context"
	"strings"

	"critical-images-beacon/internal/application/port/output"
	"critical-images-beacon/internal/domain/entity"
)

// Env bundles the host collaborators a controller runs against.
type Env struct {
	Document  output.Document
	Events    output.EventTarget
	Scheduler output.Scheduler
	Transport output.BeaconTransport
	Observer  output.PayloadObserver
	Logger    output.LoggerPort
}

// Controller finds the images inside the initial viewport and beacons their
// hashes. One controller serves exactly one scan.
type Controller struct {
	cfg          entity.BeaconConfig
	env          Env
	windowSize   entity.WindowSize
	imgLocations map[entity.LocationKey]bool
	state        entity.BeaconState
	result       entity.BeaconResult
}

func New(env Env, cfg entity.BeaconConfig) *Controller {
	return &Controller{
		cfg:          cfg,
		env:          env,
		windowSize:   env.Document.Viewport().Size(),
		imgLocations: make(map[entity.LocationKey]bool),
		state:        entity.BeaconStateInitialized,
		result:       entity.BeaconResult{State: entity.BeaconStateInitialized},
	}
}

func (c *Controller) WindowSize() entity.WindowSize {
	return c.windowSize
}

func (c *Controller) State() entity.BeaconState {
	return c.state
}

// Result is the outcome of the scan, zero-valued until the controller fired.
func (c *Controller) Result() entity.BeaconResult {
	return c.result
}

func (c *Controller) location(rect entity.Rect) entity.Location {
	scroll := c.env.Document.Scroll().Offset()
	return entity.Location{
		Top:  rect.Top + scroll.Y,
		Left: rect.Left + scroll.X,
	}
}

// IsCritical reports whether el is visible and its top-left corner lies in
// the captured window. Elements stacked on an already seen location are
// rejected so only the first of them counts.
func (c *Controller) IsCritical(el output.Element) bool {
	width, height := el.OffsetSize()
	if width <= 0 && height <= 0 {
		return false
	}

	rect, _ := el.BoundingClientRect()
	loc := c.location(rect)
	key := loc.Key()
	if c.imgLocations[key] {
		return false
	}
	c.imgLocations[key] = true

	return c.windowSize.Contains(loc)
}

// CheckCriticalImages scans img and input elements, and sends one beacon if
// any of them is critical. Calls after the first are no-ops.
func (c *Controller) CheckCriticalImages(ctx context.Context) entity.BeaconResult {
	if c.state == entity.BeaconStateFired {
		c.debug("Beacon already fired")
		return c.result
	}
	c.state = entity.BeaconStateFired

	critical := c.collect()
	c.result = entity.BeaconResult{
		State:    entity.BeaconStateFired,
		Critical: critical,
	}

	if len(critical) == 0 {
		c.debug("No critical images found", "html_url", c.cfg.HTMLURL)
		return c.result
	}

	data := BuildPayload(c.cfg.OptionsHash, critical)
	c.result.Payload = data

	if c.env.Observer != nil {
		c.env.Observer.ObservePayload(c.cfg, data)
	}

	c.result.Sent = c.env.Transport.SendBeacon(ctx, c.cfg.BeaconURL, c.cfg.HTMLURL, data)
	if !c.result.Sent {
		c.debug("Beacon not sent", "beacon_url", c.cfg.BeaconURL)
	}
	return c.result
}

func (c *Controller) collect() []string {
	var critical []string
	seen := make(map[string]bool)

	for _, tag := range entity.CandidateTags {
		for _, el := range c.env.Document.ElementsByTagName(tag) {
			key, ok := el.Attribute(entity.HashAttribute)
			if !ok || key == "" {
				continue
			}
			if _, measurable := el.BoundingClientRect(); !measurable {
				continue
			}
			// classify before the hash check so every measured element
			// claims its location
			if !c.IsCritical(el) || seen[key] {
				continue
			}
			seen[key] = true
			critical = append(critical, key)
		}
	}
	return critical
}

// BuildPayload renders "oh=<optionsHash>&ci=<h1>,<h2>,..." and stops adding
// hashes once the next one would push it past MaxPayloadSize.
func BuildPayload(optionsHash string, hashes []string) string {
	if len(hashes) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("oh=")
	sb.WriteString(optionsHash)
	sb.WriteString("&ci=")
	sb.WriteString(entity.EncodeURIComponent(hashes[0]))

	for _, h := range hashes[1:] {
		tmp := "," + entity.EncodeURIComponent(h)
		if sb.Len()+len(tmp) > entity.MaxPayloadSize {
			break
		}
		sb.WriteString(tmp)
	}
	return sb.String()
}

func (c *Controller) debug(msg string, args ...any) {
	if c.env.Logger != nil {
		c.env.Logger.Debug(msg, args...)
	}
}
