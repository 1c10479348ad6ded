package service

import (
	"context"
	"fmt"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// TrackingService exposes the audit trail
type TrackingService interface {
	// ListByLetter returns the letter's audit history ordered by creation
	// time ascending, i.e. the exact sequence of statuses it held
	ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.TrackingEntry, error)
}

type trackingServiceImpl struct {
	trackingRepo port.TrackingRepository
	incomingRepo port.IncomingLetterRepository
	outgoingRepo port.OutgoingLetterRepository
	logger       Logger
}

// NewTrackingService creates a new TrackingService
func NewTrackingService(
	trackingRepo port.TrackingRepository,
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	logger Logger,
) TrackingService {
	return &trackingServiceImpl{
		trackingRepo: trackingRepo,
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		logger:       logger,
	}
}

func (s *trackingServiceImpl) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.TrackingEntry, error) {
	switch ref.Direction {
	case workflow.DirectionIncoming:
		letter, err := s.incomingRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if letter == nil {
			return nil, fmt.Errorf("%w: incoming letter %d", port.ErrNotFound, ref.ID)
		}
	case workflow.DirectionOutgoing:
		letter, err := s.outgoingRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, storeErr(err)
		}
		if letter == nil {
			return nil, fmt.Errorf("%w: outgoing letter %d", port.ErrNotFound, ref.ID)
		}
	default:
		return nil, fmt.Errorf("%w: unknown letter direction %q", ErrInvalidArgument, ref.Direction)
	}

	entries, err := s.trackingRepo.ListByLetter(ctx, ref)
	if err != nil {
		s.logger.Error("Failed to list tracking entries", "error", err, "letter_id", ref.ID)
		return nil, storeErr(err)
	}
	return entries, nil
}
