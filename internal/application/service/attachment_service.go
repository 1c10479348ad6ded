package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// AttachmentService stores supporting documents (lampiran) for a letter.
// Records are immutable once written.
type AttachmentService interface {
	Add(ctx context.Context, ref entity.LetterRef, fileName, contentType string, r io.Reader, actor entity.Actor) (*entity.Attachment, error)
	ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.Attachment, error)
	Open(ctx context.Context, id int64) (*entity.Attachment, io.ReadCloser, error)
}

type attachmentServiceImpl struct {
	attachmentRepo port.AttachmentRepository
	incomingRepo   port.IncomingLetterRepository
	outgoingRepo   port.OutgoingLetterRepository
	fileStore      port.FileStore
	logger         Logger
}

// NewAttachmentService creates a new AttachmentService
func NewAttachmentService(
	attachmentRepo port.AttachmentRepository,
	incomingRepo port.IncomingLetterRepository,
	outgoingRepo port.OutgoingLetterRepository,
	fileStore port.FileStore,
	logger Logger,
) AttachmentService {
	return &attachmentServiceImpl{
		attachmentRepo: attachmentRepo,
		incomingRepo:   incomingRepo,
		outgoingRepo:   outgoingRepo,
		fileStore:      fileStore,
		logger:         logger,
	}
}

// letterStatus mirrors the disposition service's existence check
func (s *attachmentServiceImpl) letterStatus(ctx context.Context, ref entity.LetterRef) (workflow.State, error) {
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

// Add stores the file bytes and records the metadata. Only the current
// stage-holder may attach documents; closed letters accept no more files.
func (s *attachmentServiceImpl) Add(ctx context.Context, ref entity.LetterRef, fileName, contentType string, r io.Reader, actor entity.Actor) (*entity.Attachment, error) {
	if fileName == "" {
		return nil, fmt.Errorf("%w: file name is required", ErrInvalidArgument)
	}

	status, err := s.letterStatus(ctx, ref)
	if err != nil {
		return nil, err
	}
	if status.IsTerminal() {
		return nil, fmt.Errorf("%w: letter is closed (status %s)", port.ErrConflict, status)
	}
	if !workflow.StageHolder(ref.Direction, status, actor.Role) {
		return nil, fmt.Errorf("%w: %s does not hold the letter at stage %s",
			workflow.ErrForbidden, actor.Role, status)
	}

	storedName, size, err := s.fileStore.Save(ctx, ref, fileName, r)
	if err != nil {
		s.logger.Error("Failed to store attachment file", "error", err, "letter_id", ref.ID)
		return nil, storeErr(err)
	}

	attachment := &entity.Attachment{
		Letter:      ref,
		FileName:    fileName,
		StoredName:  storedName,
		ContentType: contentType,
		SizeBytes:   size,
		UploadedBy:  actor.ID,
		CreatedAt:   time.Now(),
	}
	if err := s.attachmentRepo.Create(ctx, attachment); err != nil {
		s.logger.Error("Failed to record attachment", "error", err, "letter_id", ref.ID)
		return nil, storeErr(err)
	}

	s.logger.Info("Attachment stored",
		"id", attachment.ID, "letter_id", ref.ID, "file", fileName, "size", size)
	return attachment, nil
}

// ListByLetter returns all attachment metadata for a letter
func (s *attachmentServiceImpl) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.Attachment, error) {
	if _, err := s.letterStatus(ctx, ref); err != nil {
		return nil, err
	}
	attachments, err := s.attachmentRepo.ListByLetter(ctx, ref)
	if err != nil {
		return nil, storeErr(err)
	}
	return attachments, nil
}

// Open returns the metadata plus a reader over the stored bytes
func (s *attachmentServiceImpl) Open(ctx context.Context, id int64) (*entity.Attachment, io.ReadCloser, error) {
	attachment, err := s.attachmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	if attachment == nil {
		return nil, nil, fmt.Errorf("%w: attachment %d", port.ErrNotFound, id)
	}
	rc, err := s.fileStore.Open(ctx, attachment.Letter, attachment.StoredName)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	return attachment, rc, nil
}
