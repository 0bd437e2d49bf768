package output

import "context"

type BeaconTransport interface {
	// SendBeacon reports false when no request could be issued.
	SendBeacon(ctx context.Context, beaconURL, htmlURL, data string) bool
}
