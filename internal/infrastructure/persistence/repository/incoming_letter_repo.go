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

// IncomingLetterRepository implements port.IncomingLetterRepository
type IncomingLetterRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIncomingLetterRepository creates a new incoming letter repository
func NewIncomingLetterRepository(db *sql.DB, logger *zap.Logger) port.IncomingLetterRepository {
	return &IncomingLetterRepository{
		db:     db,
		logger: logger,
	}
}

const incomingColumns = `id, agenda_number, letter_number, subject, sender, category,
	letter_date, received_date, status, created_by, created_at, updated_at`

// Create inserts a new incoming letter
func (r *IncomingLetterRepository) Create(ctx context.Context, letter *entity.IncomingLetter) error {
	query := `
		INSERT INTO incoming_letters (
			agenda_number, letter_number, subject, sender, category,
			letter_date, received_date, status, created_by, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		letter.AgendaNumber,
		letter.LetterNumber,
		letter.Subject,
		letter.Sender,
		letter.Category,
		letter.LetterDate,
		letter.ReceivedDate,
		letter.Status.String(),
		letter.CreatedBy,
		letter.CreatedAt,
		letter.UpdatedAt,
	)
	if err != nil {
		if sqlite.IsUniqueViolation(err) {
			return fmt.Errorf("%w: agenda number %s already registered", port.ErrConflict, letter.AgendaNumber)
		}
		r.logger.Error("Failed to create incoming letter", zap.Error(err))
		return fmt.Errorf("failed to create incoming letter: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	letter.ID = id
	return nil
}

// GetByID retrieves an incoming letter by ID, (nil, nil) when absent
func (r *IncomingLetterRepository) GetByID(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
	query := `SELECT ` + incomingColumns + ` FROM incoming_letters WHERE id = ?`

	letter, err := scanIncoming(sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get incoming letter", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get incoming letter: %w", err)
	}
	return letter, nil
}

// UpdateStatusIf performs the compare-and-swap status write. A zero-row
// update means the letter moved concurrently and surfaces as ErrConflict.
func (r *IncomingLetterRepository) UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error {
	query := `UPDATE incoming_letters SET status = ?, updated_at = ? WHERE id = ? AND status = ?`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		next.String(), now, id, expected.String())
	if err != nil {
		r.logger.Error("Failed to update incoming letter status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: incoming letter %d is no longer %s", port.ErrConflict, id, expected)
	}
	return nil
}

// List retrieves a filtered page plus the unfiltered-page total
func (r *IncomingLetterRepository) List(ctx context.Context, filter port.LetterFilter) ([]*entity.IncomingLetter, int, error) {
	where, args := incomingWhere(filter)

	var total int
	countQuery := `SELECT COUNT(*) FROM incoming_letters` + where
	if err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count incoming letters: %w", err)
	}

	query := `SELECT ` + incomingColumns + ` FROM incoming_letters` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		r.logger.Error("Failed to list incoming letters", zap.Error(err))
		return nil, 0, fmt.Errorf("failed to list incoming letters: %w", err)
	}
	defer rows.Close()

	letters, err := collectIncoming(rows)
	if err != nil {
		return nil, 0, err
	}
	return letters, total, nil
}

// ListByMonth returns the month's register, ordered by agenda number
func (r *IncomingLetterRepository) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.IncomingLetter, error) {
	prefix := fmt.Sprintf("SM-%04d%02d-", year, month)
	query := `SELECT ` + incomingColumns + ` FROM incoming_letters
		WHERE agenda_number LIKE ? ORDER BY agenda_number ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, prefix+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to list incoming letters by month: %w", err)
	}
	defer rows.Close()

	return collectIncoming(rows)
}

// Delete removes an incoming letter row
func (r *IncomingLetterRepository) Delete(ctx context.Context, id int64) error {
	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx,
		`DELETE FROM incoming_letters WHERE id = ?`, id)
	if err != nil {
		r.logger.Error("Failed to delete incoming letter", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to delete incoming letter: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: incoming letter %d", port.ErrNotFound, id)
	}
	return nil
}

// CountByStatus returns letter counts grouped by status
func (r *IncomingLetterRepository) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx,
		`SELECT status, COUNT(*) FROM incoming_letters GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count incoming letters: %w", err)
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
func (r *IncomingLetterRepository) LastAgendaNumber(ctx context.Context, prefix string) (string, error) {
	var agenda string
	err := sqlite.ExecutorFrom(ctx, r.db).QueryRowContext(ctx,
		`SELECT agenda_number FROM incoming_letters WHERE agenda_number LIKE ? ORDER BY agenda_number DESC LIMIT 1`,
		prefix+"%").Scan(&agenda)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last agenda number: %w", err)
	}
	return agenda, nil
}

func incomingWhere(filter port.LetterFilter) (string, []interface{}) {
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
		add("(subject LIKE ? OR sender LIKE ?)", "%"+filter.Search+"%")
		args = append(args, "%"+filter.Search+"%")
	}
	return where, args
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanIncoming(row rowScanner) (*entity.IncomingLetter, error) {
	var letter entity.IncomingLetter
	var status string
	err := row.Scan(
		&letter.ID,
		&letter.AgendaNumber,
		&letter.LetterNumber,
		&letter.Subject,
		&letter.Sender,
		&letter.Category,
		&letter.LetterDate,
		&letter.ReceivedDate,
		&status,
		&letter.CreatedBy,
		&letter.CreatedAt,
		&letter.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	letter.Status = workflow.State(status)
	return &letter, nil
}

func collectIncoming(rows *sql.Rows) ([]*entity.IncomingLetter, error) {
	var letters []*entity.IncomingLetter
	for rows.Next() {
		letter, err := scanIncoming(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incoming letter: %w", err)
		}
		letters = append(letters, letter)
	}
	return letters, rows.Err()
}
