package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
	"github.com/uptpik/amanat/internal/infrastructure/persistence/sqlite"
)

// OutgoingLetterRepository implements port.OutgoingLetterRepository
type OutgoingLetterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOutgoingLetterRepository creates a new outgoing letter repository
func NewOutgoingLetterRepository(db *sql.DB, logger *zap.Logger) port.OutgoingLetterRepository {
	return &OutgoingLetterRepository{
		db:     db,
		logger: logger,
	}
}

const outgoingColumns = `id, agenda_number, letter_number, subject, recipient, category,
	letter_date, status, sent_at, created_by, created_at, updated_at`

// Create inserts a new outgoing letter draft
func (r *OutgoingLetterRepository) Create(ctx context.Context, letter *entity.OutgoingLetter) error {
	query := `
		INSERT INTO outgoing_letters (
			agenda_number, letter_number, subject, recipient, category,
			letter_date, status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		letter.AgendaNumber,
		letter.LetterNumber,
		letter.Subject,
		letter.Recipient,
		letter.Category,
		letter.LetterDate,
		letter.Status.String(),
		letter.CreatedBy,
		letter.CreatedAt,
		letter.UpdatedAt,
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("%w: agenda number %s already registered", port.ErrConflict, letter.AgendaNumber)
		}
		r.logger.Error("Failed to create outgoing letter", zap.Error(err))
		return fmt.Errorf("failed to create outgoing letter: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	letter.ID = id
	return nil
}

// GetByID retrieves an outgoing letter by ID, (nil, nil) when absent
func (r *OutgoingLetterRepository) GetByID(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters WHERE id = ?`

	letter, err := scanOutgoing(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get outgoing letter", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get outgoing letter: %w", err)
	}
	return letter, nil
}

// UpdateStatusIf performs the compare-and-swap status write
func (r *OutgoingLetterRepository) UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error {
	query := `UPDATE outgoing_letters SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		next.String(), now, id, expected.String())
	if err != nil {
		r.logger.Error("Failed to update outgoing letter status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: outgoing letter %d is no longer %s", port.ErrConflict, id, expected)
	}
	return nil
}

// SetSentAt stamps the dispatch time
func (r *OutgoingLetterRepository) SetSentAt(ctx context.Context, id int64, t time.Time) error {
	_, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`UPDATE outgoing_letters SET sent_at = ? WHERE id = ?`, t, id)
	if err != nil {
		r.logger.Error("Failed to set sent time", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set sent time: %w", err)
	}
	return nil
}

// List retrieves a filtered page plus the total matching count
func (r *OutgoingLetterRepository) List(ctx context.Context, filter port.LetterFilter) ([]*entity.OutgoingLetter, int, error) {
	where, args := outgoingWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM outgoing_letters` + where
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count outgoing letters: %w", err)
	}

	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		r.logger.Error("Failed to list outgoing letters", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list outgoing letters: %w", err)
	}
	defer rows.Close()

	letters, err := collectOutgoing(rows)
	if err != nil {
		return nil, 0, err
	}
	return letters, total, nil
}

// ListByMonth returns the month's register, ordered by agenda number
func (r *OutgoingLetterRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.OutgoingLetter, error) {
	prefix := fmt.Sprintf("SK-%04d%02d-", year, month)
	query := `SELECT ` + outgoingColumns + ` FROM outgoing_letters
		WHERE agenda_number LIKE ? ORDER BY agenda_number ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list outgoing letters by month: %w", err)
	}
	defer rows.Close()

	return collectOutgoing(rows)
}

// Delete removes an outgoing letter row
func (r *OutgoingLetterRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`DELETE FROM outgoing_letters WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete outgoing letter", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete outgoing letter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: outgoing letter %d", port.ErrNotFound, id)
	}
	return nil
}

// CountByStatus returns letter counts grouped by status
func (r *OutgoingLetterRepository) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM outgoing_letters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count outgoing letters: %w", err)
	}
	defer rows.Close()

	counts := make(map[workflow.State]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[workflow.State(status)] = n
	}
	return counts, rows.Err()
}

// LastAgendaNumber returns the highest agenda number with the given prefix
func (r *OutgoingLetterRepository) LastAgendaNumber(ctx context.Context, prefix string) (string, error) {
	var agenda string
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT agenda_number FROM outgoing_letters WHERE agenda_number LIKE ? ORDER BY agenda_number DESC LIMIT 1`,
		prefix+"%").Scan(&agenda)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last agenda number: %w", err)
	}
	return agenda, nil
}

func outgoingWhere(filter port.LetterFilter) (string, []interface{}) {
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
		add("status = ?", filter.Status.String())
	}
	if filter.Category != "" {
		add("category = ?", filter.Category)
	}
	if filter.Search != "" {
		add("(subject LIKE ? OR recipient LIKE ?)", "%"+filter.Search+"%")
		args = append(args, "%"+filter.Search+"%")
	}
	return where, args
}

func scanOutgoing(row rowScanner) (*entity.OutgoingLetter, error) {
	var letter entity.OutgoingLetter
	var status string
	var sentAt sql.NullTime
	err := row.Scan(
		&letter.ID,
		&letter.AgendaNumber,
		&letter.LetterNumber,
		&letter.Subject,
		&letter.Recipient,
		&letter.Category,
		&letter.LetterDate,
		&status,
		&sentAt,
		&letter.CreatedBy,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	letter.Status = workflow.State(status)
	if sentAt.Valid {
		letter.SentAt = &sentAt.Time
	}
	return &letter, nil
}

func collectOutgoing(rows *sql.Rows) ([]*entity.OutgoingLetter, error) {
	var letters []*entity.OutgoingLetter
	for rows.Next() {
		letter, err := scanOutgoing(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outgoing letter: %w", err)
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}
