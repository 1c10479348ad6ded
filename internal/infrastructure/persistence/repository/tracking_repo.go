package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/sqlite"
)

// TrackingRepository implements port.TrackingRepository. Entries are
// append-only; there is deliberately no update or delete.
type TrackingRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewTrackingRepository creates a new tracking repository
func NewTrackingRepository(db *sql.DB, logger *zap.Logger) port.TrackingRepository {
	return &TrackingRepository{
		db:     db,
		logger: logger,
	}
}

// Append inserts one tracking entry
func (r *TrackingRepository) Append(ctx context.Context, e *entity.TrackingEntry) error {
	query := `
		INSERT INTO tracking_entries (
			incoming_letter_id, outgoing_letter_id, stage, position,
			description, created_by, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	incomingID, outgoingID := refValues(e.Letter)
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		incomingID,
		outgoingID,
		e.Stage.String(),
		e.Position,
		e.Description,
		e.CreatedBy,
		e.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to append tracking entry", zap.Error(err))
		return fmt.Errorf("failed to append tracking entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// ListByLetter returns a letter's entries ordered by creation time
// ascending, insertion order breaking ties
func (r *TrackingRepository) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.TrackingEntry, error) {
	query := fmt.Sprintf(`
		SELECT id, incoming_letter_id, outgoing_letter_id, stage, position,
			description, created_by, created_at
		FROM tracking_entries
		WHERE %s = ?
		ORDER BY created_at ASC, id ASC
	`, refColumn(ref))

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, ref.ID)
	if err != nil {
		r.logger.Error("Failed to list tracking entries", zap.Int64("letter_id", ref.ID), zap.Error(err))
		return nil, fmt.Errorf("failed to list tracking entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.TrackingEntry
	for rows.Next() {
		var e entity.TrackingEntry
		var incomingID, outgoingID sql.NullInt64
		var stage string
		err := rows.Scan(
			&e.ID,
			&incomingID,
			&outgoingID,
			&stage,
			&e.Position,
			&e.Description,
			&e.CreatedBy,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tracking entry: %w", err)
		}
		e.Letter = refFromColumns(incomingID, outgoingID)
		e.Stage = workflow.State(stage)
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
