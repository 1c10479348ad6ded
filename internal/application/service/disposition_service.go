package service

import (
	"context"
	"fmt"
	"time"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// CreateDispositionInput carries a routing instruction
type CreateDispositionInput struct {
	Letter      entity.LetterRef
	ToUserID    int64
	Kind        string
	Instruction string
	DueDate     *time.Time
}

// DispositionService manages routing instructions between stage-holders.
// Creating a disposition never advances the parent letter; advancement is
// always the explicit letter transition call.
type DispositionService interface {
	Create(ctx context.Context, input CreateDispositionInput, actor entity.Actor) (*entity.Disposition, error)
	GetByID(ctx context.Context, id int64) (*entity.Disposition, error)
	UpdateStatus(ctx context.Context, id int64, newStatus string, actorID int64) (*entity.Disposition, error)
	List(ctx context.Context, filter port.DispositionFilter) ([]*entity.Disposition, int, error)
	Delete(ctx context.Context, id int64, actor entity.Actor) error
}

type dispositionServiceImpl struct {
	dispositionRepo port.DispositionRepository
	incomingRepo    port.IncomingLetterRepository
	outgoingRepo    port.OutgoingLetterRepository
	trackingRepo    port.TrackingRepository
	userRepo        port.UserRepository
	txManager       port.TransactionManager
	logger          Logger
}

// NewDispositionService creates a new DispositionService
func NewDispositionService(
	dispositionRepo port.DispositionRepository,
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	trackingRepo port.TrackingRepository,
	userRepo port.UserRepository,
	txManager port.TransactionManager,
	logger Logger,
) DispositionService {
	return &dispositionServiceImpl{
		dispositionRepo: dispositionRepo,
		incomingRepo:    incomingRepo,
		outgoingRepo:    outgoingRepo,
		trackingRepo:    trackingRepo,
		userRepo:        userRepo,
		txManager:       txManager,
		logger:          logger,
	}
}

// letterStatus resolves the referenced letter's current status, or
// ErrNotFound when the letter does not exist
func (s *dispositionServiceImpl) letterStatus(ctx context.Context, ref entity.LetterRef) (workflow.State, error) {
	switch ref.Direction {
	case workflow.DirectionIncoming:
		letter, err := s.incomingRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return "", storeErr(err)
		}
		if letter == nil {
			return "", fmt.Errorf("%w: incoming letter %d", port.ErrNotFound, ref.ID)
		}
		return letter.Status, nil
	case workflow.DirectionOutgoing:
		letter, err := s.outgoingRepo.GetByID(ctx, ref.ID)
		if err != nil {
			return "", storeErr(err)
		}
		if letter == nil {
			return "", fmt.Errorf("%w: outgoing letter %d", port.ErrNotFound, ref.ID)
		}
		return letter.Status, nil
	default:
		return "", fmt.Errorf("%w: unknown letter direction %q", ErrInvalidArgument, ref.Direction)
	}
}

// Create records a routing instruction. The creator must currently hold the
// letter's stage; the recipient must be an existing active user.
func (s *dispositionServiceImpl) Create(ctx context.Context, input CreateDispositionInput, actor entity.Actor) (*entity.Disposition, error) {
	if !entity.IsValidDispositionKind(input.Kind) {
		return nil, fmt.Errorf("%w: disposition kind %q", ErrInvalidArgument, input.Kind)
	}
	if input.Instruction == "" {
		return nil, fmt.Errorf("%w: instruction is required", ErrInvalidArgument)
	}

	status, err := s.letterStatus(ctx, input.Letter)
	if err != nil {
		return nil, err
	}

	if !workflow.StageHolder(input.Letter.Direction, status, actor.Role) {
		return nil, fmt.Errorf("%w: %s does not hold the letter at stage %s",
			workflow.ErrForbidden, actor.Role, status)
	}

	recipient, err := s.userRepo.GetByID(ctx, input.ToUserID)
	if err != nil {
		return nil, storeErr(err)
	}
	if recipient == nil || !recipient.Active {
		return nil, fmt.Errorf("%w: recipient user %d", port.ErrNotFound, input.ToUserID)
	}

	now := time.Now()
	disposition := &entity.Disposition{
		Letter:      input.Letter,
		FromUserID:  actor.ID,
		ToUserID:    input.ToUserID,
		Kind:        input.Kind,
		Instruction: input.Instruction,
		Status:      entity.DispositionPending,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.dispositionRepo.Create(txCtx, disposition); err != nil {
			return fmt.Errorf("create disposition: %w", err)
		}
		return s.trackingRepo.Append(txCtx, &entity.TrackingEntry{
			Letter:      input.Letter,
			Stage:       status,
			Position:    actor.Role.PositionLabel(),
			Description: fmt.Sprintf("Disposition (%s) handed to %s", input.Kind, recipient.Position),
			CreatedBy:   actor.ID,
			CreatedAt:   now,
		})
	})
	if err != nil {
		s.logger.Error("Failed to create disposition", "error", err, "letter_id", input.Letter.ID)
		return nil, storeErr(err)
	}

	s.logger.Info("Disposition created",
		"id", disposition.ID, "letter_id", input.Letter.ID, "to_user", input.ToUserID)
	return disposition, nil
}

// GetByID retrieves a disposition by ID
func (s *dispositionServiceImpl) GetByID(ctx context.Context, id int64) (*entity.Disposition, error) {
	disposition, err := s.dispositionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, storeErr(err)
	}
	if disposition == nil {
		return nil, fmt.Errorf("%w: disposition %d", port.ErrNotFound, id)
	}
	return disposition, nil
}

// UpdateStatus mutates a disposition's status. Only the assigned recipient
// may do so, and never after DONE or REJECTED.
func (s *dispositionServiceImpl) UpdateStatus(ctx context.Context, id int64, newStatus string, actorID int64) (*entity.Disposition, error) {
	if !entity.IsValidDispositionStatus(newStatus) {
		return nil, fmt.Errorf("%w: disposition status %q", ErrInvalidArgument, newStatus)
	}

	disposition, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if disposition.ToUserID != actorID {
		return nil, fmt.Errorf("%w: only the assigned recipient may update a disposition", workflow.ErrForbidden)
	}
	// fast-path rejection; the store's guarded update is what rules out a
	// concurrent writer finishing the disposition after this read
	if disposition.IsFinal() {
		return nil, fmt.Errorf("%w: disposition already %s", port.ErrConflict, disposition.Status)
	}

	now := time.Now()
	var completedAt *time.Time
	if newStatus == entity.DispositionDone {
		completedAt = &now
	}

	if err := s.dispositionRepo.UpdateStatus(ctx, id, newStatus, completedAt); err != nil {
		s.logger.Error("Failed to update disposition status", "error", err, "id", id)
		return nil, storeErr(err)
	}

	s.logger.Info("Disposition status updated", "id", id, "status", newStatus)
	disposition.Status = newStatus
	disposition.CompletedAt = completedAt
	disposition.UpdatedAt = now
	return disposition, nil
}

// List retrieves a filtered, paginated page of dispositions
func (s *dispositionServiceImpl) List(ctx context.Context, filter port.DispositionFilter) ([]*entity.Disposition, int, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	dispositions, total, err := s.dispositionRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, storeErr(err)
	}
	return dispositions, total, nil
}

// Delete removes a disposition. Once it has left PENDING the record is part
// of the audit history and can no longer be removed.
func (s *dispositionServiceImpl) Delete(ctx context.Context, id int64, actor entity.Actor) error {
	disposition, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if disposition.FromUserID != actor.ID && actor.Role != workflow.RoleAdmin {
		return fmt.Errorf("%w: only the issuer or admin may delete a disposition", workflow.ErrForbidden)
	}
	if disposition.Status != entity.DispositionPending {
		return fmt.Errorf("%w: disposition already %s", port.ErrConflict, disposition.Status)
	}
	if err := s.dispositionRepo.Delete(ctx, id); err != nil {
		return storeErr(err)
	}
	s.logger.Info("Disposition deleted", "id", id)
	return nil
}
