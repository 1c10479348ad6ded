package service

import (
	"context"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// DashboardSummary aggregates letter counts per status for both registers
type DashboardSummary struct {
	Incoming map[workflow.State]int `json:"incoming"`
	Outgoing map[workflow.State]int `json:"outgoing"`
}

// DashboardService produces the monitoring counters shown on the landing page
type DashboardService interface {
	Summary(ctx context.Context) (*DashboardSummary, error)
	DispositionSummary(ctx context.Context, userID int64) (map[string]int, error)
}

type dashboardServiceImpl struct {
	incomingRepo    port.IncomingLetterRepository
	outgoingRepo    port.OutgoingLetterRepository
	dispositionRepo port.DispositionRepository
	logger          Logger
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	dispositionRepo port.DispositionRepository,
	logger Logger,
) DashboardService {
	return &dashboardServiceImpl{
		incomingRepo:    incomingRepo,
		outgoingRepo:    outgoingRepo,
		dispositionRepo: dispositionRepo,
		logger:          logger,
	}
}

func (s *dashboardServiceImpl) Summary(ctx context.Context) (*DashboardSummary, error) {
	incoming, err := s.incomingRepo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count incoming letters", "error", err)
		return nil, storeErr(err)
	}
	outgoing, err := s.outgoingRepo.CountByStatus(ctx)
	if err != nil {
		s.logger.Error("Failed to count outgoing letters", "error", err)
		return nil, storeErr(err)
	}
	return &DashboardSummary{Incoming: incoming, Outgoing: outgoing}, nil
}

func (s *dashboardServiceImpl) DispositionSummary(ctx context.Context, userID int64) (map[string]int, error) {
	counts, err := s.dispositionRepo.CountByStatusForRecipient(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to count dispositions", "error", err, "user_id", userID)
		return nil, storeErr(err)
	}
	return counts, nil
}
