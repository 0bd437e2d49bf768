package input

import (
	"context"

	"critical-images-beacon/internal/domain/entity"
)

type Scanner interface {
	Scan(ctx context.Context, targets []entity.Target) ([]entity.ScanReport, error)
}
