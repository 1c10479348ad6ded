package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/sqlite"
)

// DispositionRepository implements port.DispositionRepository
type DispositionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDispositionRepository creates a new disposition repository
func NewDispositionRepository(db *sql.DB, logger *zap.Logger) port.DispositionRepository {
	return &DispositionRepository{
		db:     db,
		logger: logger,
	}
}

const dispositionColumns = `id, incoming_letter_id, outgoing_letter_id, from_user_id,
	to_user_id, kind, instruction, status, due_date, completed_at, created_at, updated_at`

// Create inserts a new disposition
func (r *DispositionRepository) Create(ctx context.Context, d *entity.Disposition) error {
	query := `
		INSERT INTO dispositions (
			incoming_letter_id, outgoing_letter_id, from_user_id, to_user_id,
			kind, instruction, status, due_date, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	incomingID, outgoingID := refValues(d.Letter)
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		incomingID,
		outgoingID,
		d.FromUserID,
		d.ToUserID,
		d.Kind,
		d.Instruction,
		d.Status,
		d.DueDate,
		d.CreatedAt,
		d.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create disposition", zap.Error(err))
		return fmt.Errorf("failed to create disposition: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	d.ID = id
	return nil
}

// GetByID retrieves a disposition by ID, (nil, nil) when absent
func (r *DispositionRepository) GetByID(ctx context.Context, id int64) (*entity.Disposition, error) {
	query := `SELECT ` + dispositionColumns + ` FROM dispositions WHERE id = ?`

	d, err := scanDisposition(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get disposition", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get disposition: %w", err)
	}
	return d, nil
}

// UpdateStatus writes the new status and, for DONE, the completion time.
// Terminal rows (DONE, REJECTED) are never overwritten: a zero-row update on
// an existing row surfaces as ErrConflict, mirroring the letter CAS write.
func (r *DispositionRepository) UpdateStatus(ctx context.Context, id int64, status string, completedAt *time.Time) error {
	query := `UPDATE dispositions SET status = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND status NOT IN (?, ?)`

	exec := sqlite.ExecutorFrom(ctx, r.db)
	result, err := exec.ExecContext(ctx, query, status, completedAt, id,
		entity.DispositionDone, entity.DispositionRejected)
	if err != nil {
		r.logger.Error("Failed to update disposition status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update disposition status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		var current string
		err := exec.QueryRowContext(ctx, `SELECT status FROM dispositions WHERE id = ?`, id).Scan(&current)
		if err == sql.ErrNoRows {
			return fmt.Errorf("%w: disposition %d", port.ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to read disposition status: %w", err)
		}
		return fmt.Errorf("%w: disposition %d is already %s", port.ErrConflict, id, current)
	}
	return nil
}

// List retrieves a filtered page plus the total matching count
func (r *DispositionRepository) List(ctx context.Context, filter port.DispositionFilter) ([]*entity.Disposition, int, error) {
	where := ""
	var args []interface{}
	add := func(clause string, arg interface{}) {
		if where == "" {
			where = " WHERE " + clause
		} else {
			where += " AND " + clause
		}
		args = append(args, arg)
	}
	if filter.Status != "" {
		add("status = ?", filter.Status)
	}
	if filter.ToUserID != 0 {
		add("to_user_id = ?", filter.ToUserID)
	}

	var total int
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM dispositions`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count dispositions: %w", err)
	}

	query := `SELECT ` + dispositionColumns + ` FROM dispositions` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		r.logger.Error("Failed to list dispositions", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list dispositions: %w", err)
	}
	defer rows.Close()

	var dispositions []*entity.Disposition
	for rows.Next() {
		d, err := scanDisposition(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan disposition: %w", err)
		}
		dispositions = append(dispositions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return dispositions, total, nil
}

// Delete removes a disposition row
func (r *DispositionRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`DELETE FROM dispositions WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete disposition", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete disposition: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: disposition %d", port.ErrNotFound, id)
	}
	return nil
}

// CountByStatusForRecipient returns disposition counts grouped by status
// for one recipient
func (r *DispositionRepository) CountByStatusForRecipient(ctx context.Context, userID int64) (map[string]int, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM dispositions WHERE to_user_id = ? GROUP BY status`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count dispositions: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func scanDisposition(row rowScanner) (*entity.Disposition, error) {
	var d entity.Disposition
	var incomingID, outgoingID sql.NullInt64
	var dueDate, completedAt sql.NullTime
	err := row.Scan(
		&d.ID,
		&incomingID,
		&outgoingID,
		&d.FromUserID,
		&d.ToUserID,
		&d.Kind,
		&d.Instruction,
		&d.Status,
		&dueDate,
		&completedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.Letter = refFromColumns(incomingID, outgoingID)
	if dueDate.Valid {
		d.DueDate = &dueDate.Time
	}
	if completedAt.Valid {
		d.CompletedAt = &completedAt.Time
	}
	return &d, nil
}
