package beacon

import (
	"context"

	"critical-images-beacon/internal/domain/entity"
)

// Init builds the page's controller and arranges for it to scan once the
// load event fired and the run loop yielded.
func Init(ctx context.Context, env Env, beaconURL, htmlURL, optionsHash string) *Controller {
	c := New(env, entity.BeaconConfig{
		BeaconURL:   beaconURL,
		HTMLURL:     htmlURL,
		OptionsHash: optionsHash,
	})

	env.Events.AddHandler(entity.EventLoad, func() {
		env.Scheduler.Post(func() {
			c.CheckCriticalImages(ctx)
		})
	})
	return c
}
