package domain

import (
	"context"
	"time"
)

//go:generate mockgen -source=detection_repository.go -destination=detection_repository_mock.go -package=domain

type DetectionLogRepository interface {
	Insert(ctx context.Context, entry *DetectionLog) error
	Aggregate(ctx context.Context, since time.Time, topN int) (*DetectionAggregate, error)
}
