package storage

import (
	"context"

	"liquidityEngine/internal/model"
)

// Sink receives valuation batches.
type Sink interface {
	PutValuationBatch(ctx context.Context, batch model.ValuationBatch) error
}

// CheckpointStore keeps the last written batch summary per loop name.
type CheckpointStore interface {
	LoadCheckpoint(ctx context.Context, name string) (model.Checkpoint, bool, error)
	SaveCheckpoint(ctx context.Context, name string, cp model.Checkpoint) error
}
