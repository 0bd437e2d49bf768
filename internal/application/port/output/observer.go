package output

import "critical-images-beacon/internal/domain/entity"

type PayloadObserver interface {
	ObservePayload(cfg entity.BeaconConfig, payload string)
}
