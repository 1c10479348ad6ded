package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// CreateIncomingInput carries the registration payload for a surat masuk
type CreateIncomingInput struct {
	LetterNumber string
	Subject      string
	Sender       string
	Category     string
	LetterDate   time.Time
	ReceivedDate time.Time
}

// CreateOutgoingInput carries the draft payload for a surat keluar
type CreateOutgoingInput struct {
	LetterNumber string
	Subject      string
	Recipient    string
	Category     string
	LetterDate   time.Time
}

// LetterService owns the letter lifecycle: registration, the role-gated
// status workflow, and deletion while still in the initial state. Every
// accepted transition writes its tracking entry in the same transaction.
type LetterService interface {
	CreateIncoming(ctx context.Context, input CreateIncomingInput, actor entity.Actor) (*entity.IncomingLetter, error)
	GetIncoming(ctx context.Context, id int64) (*entity.IncomingLetter, error)
	ListIncoming(ctx context.Context, filter port.LetterFilter) ([]*entity.IncomingLetter, int, error)
	AdvanceIncoming(ctx context.Context, id int64, requested workflow.State, actor entity.Actor) (*entity.IncomingLetter, error)
	DeleteIncoming(ctx context.Context, id int64, actor entity.Actor) error

	CreateOutgoing(ctx context.Context, input CreateOutgoingInput, actor entity.Actor) (*entity.OutgoingLetter, error)
	GetOutgoing(ctx context.Context, id int64) (*entity.OutgoingLetter, error)
	ListOutgoing(ctx context.Context, filter port.LetterFilter) ([]*entity.OutgoingLetter, int, error)
	AdvanceOutgoing(ctx context.Context, id int64, requested workflow.State, actor entity.Actor) (*entity.OutgoingLetter, error)
	DeleteOutgoing(ctx context.Context, id int64, actor entity.Actor) error
}

type letterServiceImpl struct {
	incomingRepo port.IncomingLetterRepository
	outgoingRepo port.OutgoingLetterRepository
	trackingRepo port.TrackingRepository
	txManager    port.TransactionManager
	logger       Logger
}

// NewLetterService creates a new LetterService
func NewLetterService(
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	trackingRepo port.TrackingRepository,
	txManager port.TransactionManager,
	logger Logger,
) LetterService {
	return &letterServiceImpl{
		incomingRepo: incomingRepo,
		outgoingRepo: outgoingRepo,
		trackingRepo: trackingRepo,
		txManager:    txManager,
		logger:       logger,
	}
}

// CreateIncoming registers a new incoming letter in the RECEIVED state.
// Only the office secretary (admin role) registers incoming mail.
func (s *letterServiceImpl) CreateIncoming(ctx context.Context, input CreateIncomingInput, actor entity.Actor) (*entity.IncomingLetter, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, fmt.Errorf("%w: %s may not register incoming letters", workflow.ErrForbidden, actor.Role)
	}
	if input.Subject == "" || input.Sender == "" {
		return nil, fmt.Errorf("%w: subject and sender are required", ErrInvalidArgument)
	}

	now := time.Now()
	agenda, err := s.nextAgendaNumber(ctx, s.incomingRepo.LastAgendaNumber, "SM", now)
	if err != nil {
		return nil, storeErr(err)
	}

	letter := &entity.IncomingLetter{
		AgendaNumber: agenda,
		LetterNumber: input.LetterNumber,
		Subject:      input.Subject,
		Sender:       input.Sender,
		Category:     input.Category,
		LetterDate:   input.LetterDate,
		ReceivedDate: input.ReceivedDate,
		Status:       workflow.InitialState(workflow.DirectionIncoming),
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.incomingRepo.Create(txCtx, letter); err != nil {
			return fmt.Errorf("create letter: %w", err)
		}
		return s.trackingRepo.Append(txCtx, &entity.TrackingEntry{
			Letter:      entity.IncomingRef(letter.ID),
			Stage:       letter.Status,
			Position:    actor.Role.PositionLabel(),
			Description: fmt.Sprintf("Letter registered under agenda %s", agenda),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create incoming letter", "error", err)
		return nil, storeErr(err)
	}

	s.logger.Info("Incoming letter registered", "id", letter.ID, "agenda", agenda)
	return letter, nil
}

// GetIncoming retrieves an incoming letter by ID
func (s *letterServiceImpl) GetIncoming(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
	letter, err := s.incomingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if letter == nil {
		return nil, fmt.Errorf("%w: incoming letter %d", port.ErrNotFound, id)
	}
	return letter, nil
}

// ListIncoming retrieves a filtered, paginated page of incoming letters
func (s *letterServiceImpl) ListIncoming(ctx context.Context, filter port.LetterFilter) ([]*entity.IncomingLetter, int, error) {
	letters, total, err := s.incomingRepo.List(ctx, normalizeFilter(filter))
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return letters, total, nil
}

// AdvanceIncoming moves an incoming letter one workflow step forward. The
// status write is conditional on the pre-read status; a concurrent advance
// loses the race and surfaces as ErrConflict.
func (s *letterServiceImpl) AdvanceIncoming(ctx context.Context, id int64, requested workflow.State, actor entity.Actor) (*entity.IncomingLetter, error) {
	letter, err := s.GetIncoming(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Validate(workflow.DirectionIncoming, letter.Status, requested, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.incomingRepo.UpdateStatusIf(txCtx, id, letter.Status, requested, now); err != nil {
			return err
		}
		return s.trackingRepo.Append(txCtx, &entity.TrackingEntry{
			Letter:      entity.IncomingRef(id),
			Stage:       requested,
			Position:    actor.Role.PositionLabel(),
			Description: fmt.Sprintf("Letter moved from %s to %s", letter.Status, requested),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to advance incoming letter", "error", err, "id", id, "requested", requested.String())
		return nil, storeErr(err)
	}

	s.logger.Info("Incoming letter advanced", "id", id, "from", letter.Status.String(), "to", requested.String())
	letter.Status = requested
	letter.UpdatedAt = now
	return letter, nil
}

// DeleteIncoming removes an incoming letter. Allowed only while the letter
// still sits in RECEIVED: later stages imply dependent dispositions and
// tracking entries exist.
func (s *letterServiceImpl) DeleteIncoming(ctx context.Context, id int64, actor entity.Actor) error {
	if actor.Role != workflow.RoleAdmin {
		return fmt.Errorf("%w: %s may not delete letters", workflow.ErrForbidden, actor.Role)
	}
	letter, err := s.GetIncoming(ctx, id)
	if err != nil {
		return err
	}
	if letter.Status != workflow.InitialState(workflow.DirectionIncoming) {
		return fmt.Errorf("%w: letter already entered the workflow (status %s)", port.ErrConflict, letter.Status)
	}
	if err := s.incomingRepo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.logger.Info("Incoming letter deleted", "id", id)
	return nil
}

// CreateOutgoing registers a new outgoing letter draft
func (s *letterServiceImpl) CreateOutgoing(ctx context.Context, input CreateOutgoingInput, actor entity.Actor) (*entity.OutgoingLetter, error) {
	if actor.Role != workflow.RoleAdmin {
		return nil, fmt.Errorf("%w: %s may not draft outgoing letters", workflow.ErrForbidden, actor.Role)
	}
	if input.Subject == "" || input.Recipient == "" {
		return nil, fmt.Errorf("%w: subject and recipient are required", ErrInvalidArgument)
	}

	now := time.Now()
	agenda, err := s.nextAgendaNumber(ctx, s.outgoingRepo.LastAgendaNumber, "SK", now)
	if err != nil {
		return nil, storeErr(err)
	}

	letter := &entity.OutgoingLetter{
		AgendaNumber: agenda,
		LetterNumber: input.LetterNumber,
		Subject:      input.Subject,
		Recipient:    input.Recipient,
		Category:     input.Category,
		LetterDate:   input.LetterDate,
		Status:       workflow.InitialState(workflow.DirectionOutgoing),
		CreatedBy:    actor.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.outgoingRepo.Create(txCtx, letter); err != nil {
			return fmt.Errorf("create letter: %w", err)
		}
		return s.trackingRepo.Append(txCtx, &entity.TrackingEntry{
			Letter:      entity.OutgoingRef(letter.ID),
			Stage:       letter.Status,
			Position:    actor.Role.PositionLabel(),
			Description: fmt.Sprintf("Draft registered under agenda %s", agenda),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create outgoing letter", "error", err)
		return nil, storeErr(err)
	}

	s.logger.Info("Outgoing letter drafted", "id", letter.ID, "agenda", agenda)
	return letter, nil
}

// GetOutgoing retrieves an outgoing letter by ID
func (s *letterServiceImpl) GetOutgoing(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
	letter, err := s.outgoingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if letter == nil {
		return nil, fmt.Errorf("%w: outgoing letter %d", port.ErrNotFound, id)
	}
	return letter, nil
}

// ListOutgoing retrieves a filtered, paginated page of outgoing letters
func (s *letterServiceImpl) ListOutgoing(ctx context.Context, filter port.LetterFilter) ([]*entity.OutgoingLetter, int, error) {
	letters, total, err := s.outgoingRepo.List(ctx, normalizeFilter(filter))
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return letters, total, nil
}

// AdvanceOutgoing moves an outgoing letter along its workflow DAG. Reaching
// SENT additionally stamps the dispatch time, in the same transaction.
func (s *letterServiceImpl) AdvanceOutgoing(ctx context.Context, id int64, requested workflow.State, actor entity.Actor) (*entity.OutgoingLetter, error) {
	letter, err := s.GetOutgoing(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := workflow.Validate(workflow.DirectionOutgoing, letter.Status, requested, actor.Role); err != nil {
		return nil, err
	}

	now := time.Now()
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.outgoingRepo.UpdateStatusIf(txCtx, id, letter.Status, requested, now); err != nil {
			return err
		}
		if requested == workflow.StateSent {
			if err := s.outgoingRepo.SetSentAt(txCtx, id, now); err != nil {
				return err
			}
		}
		return s.trackingRepo.Append(txCtx, &entity.TrackingEntry{
			Letter:      entity.OutgoingRef(id),
			Stage:       requested,
			Position:    actor.Role.PositionLabel(),
			Description: fmt.Sprintf("Letter moved from %s to %s", letter.Status, requested),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to advance outgoing letter", "error", err, "id", id, "requested", requested.String())
		return nil, storeErr(err)
	}

	s.logger.Info("Outgoing letter advanced", "id", id, "from", letter.Status.String(), "to", requested.String())
	letter.Status = requested
	letter.UpdatedAt = now
	if requested == workflow.StateSent {
		letter.SentAt = &now
	}
	return letter, nil
}

// DeleteOutgoing removes an outgoing letter while still in DRAFT
func (s *letterServiceImpl) DeleteOutgoing(ctx context.Context, id int64, actor entity.Actor) error {
	if actor.Role != workflow.RoleAdmin {
		return fmt.Errorf("%w: %s may not delete letters", workflow.ErrForbidden, actor.Role)
	}
	letter, err := s.GetOutgoing(ctx, id)
	if err != nil {
		return err
	}
	if letter.Status != workflow.InitialState(workflow.DirectionOutgoing) {
		return fmt.Errorf("%w: letter already entered the workflow (status %s)", port.ErrConflict, letter.Status)
	}
	if err := s.outgoingRepo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.logger.Info("Outgoing letter deleted", "id", id)
	return nil
}

// nextAgendaNumber computes the next agenda number for the month, format
// SM-200601-0001 / SK-200601-0001 with a per-month counter.
func (s *letterServiceImpl) nextAgendaNumber(ctx context.Context, last func(context.Context, string) (string, error), kind string, now time.Time) (string, error) {
	prefix := fmt.Sprintf("%s-%s-", kind, now.Format("200601"))
	latest, err := last(ctx, prefix)
	if err != nil {
		return "", err
	}

	seq := 0
	if latest != "" {
		if _, err := fmt.Sscanf(strings.TrimPrefix(latest, prefix), "%d", &seq); err != nil {
			return "", fmt.Errorf("malformed agenda number %q: %w", latest, err)
		}
	}
	return fmt.Sprintf("%s%04d", prefix, seq+1), nil
}

// normalizeFilter clamps pagination to sane bounds
func normalizeFilter(f port.LetterFilter) port.LetterFilter {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
