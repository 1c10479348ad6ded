package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/sqlite"
)

// AttachmentRepository implements port.AttachmentRepository
type AttachmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAttachmentRepository creates a new attachment repository
func NewAttachmentRepository(db *sql.DB, logger *zap.Logger) port.AttachmentRepository {
	return &AttachmentRepository{
		db:     db,
		logger: logger,
	}
}

const attachmentColumns = `id, incoming_letter_id, outgoing_letter_id, file_name,
	stored_name, content_type, size_bytes, uploaded_by, created_at`

// Create inserts attachment metadata
func (r *AttachmentRepository) Create(ctx context.Context, a *entity.Attachment) error {
	query := `
		INSERT INTO attachments (
			incoming_letter_id, outgoing_letter_id, file_name, stored_name,
			content_type, size_bytes, uploaded_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	incomingID, outgoingID := refValues(a.Letter)
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		incomingID,
		outgoingID,
		a.FileName,
		a.StoredName,
		a.ContentType,
		a.SizeBytes,
		a.UploadedBy,
		a.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create attachment", zap.Error(err))
		return fmt.Errorf("failed to create attachment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	a.ID = id
	return nil
}

// GetByID retrieves attachment metadata by ID, (nil, nil) when absent
func (r *AttachmentRepository) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	query := `SELECT ` + attachmentColumns + ` FROM attachments WHERE id = ?`

	a, err := scanAttachment(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get attachment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	return a, nil
}

// ListByLetter returns the attachments for one letter in upload order
func (r *AttachmentRepository) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.Attachment, error) {
	query := fmt.Sprintf(`SELECT %s FROM attachments WHERE %s = ? ORDER BY created_at ASC, id ASC`,
		attachmentColumns, refColumn(ref))

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, ref.ID)
	if err != nil {
		r.logger.Error("Failed to list attachments", zap.Error(err))
		return nil, fmt.Errorf("failed to list attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*entity.Attachment
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		attachments = append(attachments, a)
	}
	return attachments, rows.Err()
}

func scanAttachment(row rowScanner) (*entity.Attachment, error) {
	var a entity.Attachment
	var incomingID, outgoingID sql.NullInt64
	err := row.Scan(
		&a.ID,
		&incomingID,
		&outgoingID,
		&a.FileName,
		&a.StoredName,
		&a.ContentType,
		&a.SizeBytes,
		&a.UploadedBy,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Letter = refFromColumns(incomingID, outgoingID)
	return &a, nil
}
