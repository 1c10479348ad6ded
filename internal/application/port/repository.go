package port

import (
	"context"
	"time"

	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// LetterFilter narrows letter listings. Zero values mean "no filter".
type LetterFilter struct {
	Status   workflow.State
	Category string
	Search   string
	Limit    int
	Offset   int
}

// DispositionFilter narrows disposition listings
type DispositionFilter struct {
	Status   string
	ToUserID int64
	Limit    int
	Offset   int
}

// IncomingLetterRepository defines persistence operations for IncomingLetter.
// Lookups return (nil, nil) when no row matches.
type IncomingLetterRepository interface {
	Create(ctx context.Context, letter *entity.IncomingLetter) error
	GetByID(ctx context.Context, id int64) (*entity.IncomingLetter, error)

	// UpdateStatusIf performs the compare-and-swap status write: the update
	// only applies while the row still holds expected. Zero matched rows
	// surface as ErrConflict.
	UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error

	List(ctx context.Context, filter LetterFilter) ([]*entity.IncomingLetter, int, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.IncomingLetter, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[workflow.State]int, error)

	// LastAgendaNumber returns the highest agenda number with the given
	// prefix, or "" when none exists yet
	LastAgendaNumber(ctx context.Context, prefix string) (string, error)
}

// OutgoingLetterRepository defines persistence operations for OutgoingLetter
type OutgoingLetterRepository interface {
	Create(ctx context.Context, letter *entity.OutgoingLetter) error
	GetByID(ctx context.Context, id int64) (*entity.OutgoingLetter, error)
	UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error

	// SetSentAt stamps the dispatch time; written in the same transaction
	// as the transition to SENT
	SetSentAt(ctx context.Context, id int64, t time.Time) error

	List(ctx context.Context, filter LetterFilter) ([]*entity.OutgoingLetter, int, error)
	ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.OutgoingLetter, error)
	Delete(ctx context.Context, id int64) error
	CountByStatus(ctx context.Context) (map[workflow.State]int, error)
	LastAgendaNumber(ctx context.Context, prefix string) (string, error)
}

// TrackingRepository is the append-only audit store
type TrackingRepository interface {
	Append(ctx context.Context, e *entity.TrackingEntry) error
	ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.TrackingEntry, error)
}

// DispositionRepository defines persistence operations for Disposition
type DispositionRepository interface {
	Create(ctx context.Context, d *entity.Disposition) error
	GetByID(ctx context.Context, id int64) (*entity.Disposition, error)
	UpdateStatus(ctx context.Context, id int64, status string, completedAt *time.Time) error
	List(ctx context.Context, filter DispositionFilter) ([]*entity.Disposition, int, error)
	Delete(ctx context.Context, id int64) error
	CountByStatusForRecipient(ctx context.Context, userID int64) (map[string]int, error)
}

// UserRepository resolves actors and disposition recipients
type UserRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
}

// AttachmentRepository defines persistence operations for Attachment metadata
type AttachmentRepository interface {
	Create(ctx context.Context, a *entity.Attachment) error
	GetByID(ctx context.Context, id int64) (*entity.Attachment, error)
	ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.Attachment, error)
}

// TransactionManager handles database transactions. The callback runs with a
// transaction-carrying context that repositories recognize.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
