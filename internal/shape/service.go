package shape

import (
	"context"

	"collaborative-whiteboard/internal/errors"
)

// Sequencer is the room-side entry point for durable mutations. It is
// implemented by the room manager; ops enqueued here come back out
// sequenced and fanned out to every connection.
type Sequencer interface {
	EnqueueOp(ctx context.Context, roomID string, op Op) error
	RoomSnapshot(ctx context.Context, roomID string) (map[string]Snapshot, error)
}

type Service interface {
	ListShapes(ctx context.Context, roomID string) (map[string]Snapshot, error)
	ClearShapes(ctx context.Context, roomID string) error
}

type DefaultService struct {
	sequencer Sequencer
}

func NewService(sequencer Sequencer) Service {
	return &DefaultService{sequencer: sequencer}
}

func (s *DefaultService) ListShapes(ctx context.Context, roomID string) (map[string]Snapshot, error) {
	if roomID == "" {
		return nil, errors.BadRequest("Room id is required", nil)
	}
	return s.sequencer.RoomSnapshot(ctx, roomID)
}

// ClearShapes runs the reset-all action through the sequencer so every
// peer converges to an empty collection.
func (s *DefaultService) ClearShapes(ctx context.Context, roomID string) error {
	if roomID == "" {
		return errors.BadRequest("Room id is required", nil)
	}
	return s.sequencer.EnqueueOp(ctx, roomID, ClearOp())
}
