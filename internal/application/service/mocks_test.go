package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

// Hand-rolled mocks with overridable function fields, shared by the
// service tests.

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockIncomingRepo struct {
	createFunc         func(ctx context.Context, letter *entity.IncomingLetter) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.IncomingLetter, error)
	updateStatusIfFunc func(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error
	listFunc           func(ctx context.Context, filter port.LetterFilter) ([]*entity.IncomingLetter, int, error)
	listByMonthFunc    func(ctx context.Context, year int, month time.Month) ([]*entity.IncomingLetter, error)
	deleteFunc         func(ctx context.Context, id int64) error
	lastAgendaFunc     func(ctx context.Context, prefix string) (string, error)

	statusUpdates int
	deletes       int
}

func (m *mockIncomingRepo) Create(ctx context.Context, letter *entity.IncomingLetter) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, letter)
	}
	letter.ID = 1
	return nil
}

func (m *mockIncomingRepo) GetByID(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.IncomingLetter{ID: id, Status: workflow.StateReceived}, nil
}

func (m *mockIncomingRepo) UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error {
	m.statusUpdates++
	if m.updateStatusIfFunc != nil {
		return m.updateStatusIfFunc(ctx, id, expected, next, now)
	}
	return nil
}

func (m *mockIncomingRepo) List(ctx context.Context, filter port.LetterFilter) ([]*entity.IncomingLetter, int, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockIncomingRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.IncomingLetter, error) {
	if m.listByMonthFunc != nil {
		return m.listByMonthFunc(ctx, year, month)
	}
	return nil, nil
}

func (m *mockIncomingRepo) Delete(ctx context.Context, id int64) error {
	m.deletes++
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return nil
}

func (m *mockIncomingRepo) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	return map[workflow.State]int{}, nil
}

func (m *mockIncomingRepo) LastAgendaNumber(ctx context.Context, prefix string) (string, error) {
	if m.lastAgendaFunc != nil {
		return m.lastAgendaFunc(ctx, prefix)
	}
	return "", nil
}

type mockOutgoingRepo struct {
	createFunc         func(ctx context.Context, letter *entity.OutgoingLetter) error
	getByIDFunc        func(ctx context.Context, id int64) (*entity.OutgoingLetter, error)
	updateStatusIfFunc func(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error
	lastAgendaFunc     func(ctx context.Context, prefix string) (string, error)

	statusUpdates int
	sentStamps    int
}

func (m *mockOutgoingRepo) Create(ctx context.Context, letter *entity.OutgoingLetter) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, letter)
	}
	letter.ID = 1
	return nil
}

func (m *mockOutgoingRepo) GetByID(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.OutgoingLetter{ID: id, Status: workflow.StateDraft}, nil
}

func (m *mockOutgoingRepo) UpdateStatusIf(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error {
	m.statusUpdates++
	if m.updateStatusIfFunc != nil {
		return m.updateStatusIfFunc(ctx, id, expected, next, now)
	}
	return nil
}

func (m *mockOutgoingRepo) SetSentAt(ctx context.Context, id int64, t time.Time) error {
	m.sentStamps++
	return nil
}

func (m *mockOutgoingRepo) List(ctx context.Context, filter port.LetterFilter) ([]*entity.OutgoingLetter, int, error) {
	return nil, 0, nil
}

func (m *mockOutgoingRepo) ListByMonth(ctx context.Context, year int, month time.Month) ([]*entity.OutgoingLetter, error) {
	return nil, nil
}

func (m *mockOutgoingRepo) Delete(ctx context.Context, id int64) error {
	return nil
}

func (m *mockOutgoingRepo) CountByStatus(ctx context.Context) (map[workflow.State]int, error) {
	return map[workflow.State]int{}, nil
}

func (m *mockOutgoingRepo) LastAgendaNumber(ctx context.Context, prefix string) (string, error) {
	if m.lastAgendaFunc != nil {
		return m.lastAgendaFunc(ctx, prefix)
	}
	return "", nil
}

type mockTrackingRepo struct {
	appendFunc func(ctx context.Context, e *entity.TrackingEntry) error
	entries    []*entity.TrackingEntry
}

func (m *mockTrackingRepo) Append(ctx context.Context, e *entity.TrackingEntry) error {
	if m.appendFunc != nil {
		if err := m.appendFunc(ctx, e); err != nil {
			return err
		}
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockTrackingRepo) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.TrackingEntry, error) {
	var out []*entity.TrackingEntry
	for _, e := range m.entries {
		if e.Letter == ref {
			out = append(out, e)
		}
	}
	return out, nil
}

type mockDispositionRepo struct {
	createFunc       func(ctx context.Context, d *entity.Disposition) error
	getByIDFunc      func(ctx context.Context, id int64) (*entity.Disposition, error)
	updateStatusFunc func(ctx context.Context, id int64, status string, completedAt *time.Time) error

	statusUpdates int
	deletes       int
}

func (m *mockDispositionRepo) Create(ctx context.Context, d *entity.Disposition) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, d)
	}
	d.ID = 1
	return nil
}

func (m *mockDispositionRepo) GetByID(ctx context.Context, id int64) (*entity.Disposition, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockDispositionRepo) UpdateStatus(ctx context.Context, id int64, status string, completedAt *time.Time) error {
	m.statusUpdates++
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, completedAt)
	}
	return nil
}

func (m *mockDispositionRepo) List(ctx context.Context, filter port.DispositionFilter) ([]*entity.Disposition, int, error) {
	return nil, 0, nil
}

func (m *mockDispositionRepo) Delete(ctx context.Context, id int64) error {
	m.deletes++
	return nil
}

func (m *mockDispositionRepo) CountByStatusForRecipient(ctx context.Context, userID int64) (map[string]int, error) {
	return map[string]int{}, nil
}

type mockAttachmentRepo struct {
	createFunc func(ctx context.Context, a *entity.Attachment) error
	getByIDFunc func(ctx context.Context, id int64) (*entity.Attachment, error)
	records    []*entity.Attachment
}

func (m *mockAttachmentRepo) Create(ctx context.Context, a *entity.Attachment) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, a); err != nil {
			return err
		}
	}
	a.ID = int64(len(m.records) + 1)
	m.records = append(m.records, a)
	return nil
}

func (m *mockAttachmentRepo) GetByID(ctx context.Context, id int64) (*entity.Attachment, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	for _, a := range m.records {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (m *mockAttachmentRepo) ListByLetter(ctx context.Context, ref entity.LetterRef) ([]*entity.Attachment, error) {
	var out []*entity.Attachment
	for _, a := range m.records {
		if a.Letter == ref {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockFileStore struct {
	saveFunc func(ctx context.Context, ref entity.LetterRef, fileName string, r io.Reader) (string, int64, error)
	openFunc func(ctx context.Context, ref entity.LetterRef, storedName string) (io.ReadCloser, error)
	saves    int
}

func (m *mockFileStore) Save(ctx context.Context, ref entity.LetterRef, fileName string, r io.Reader) (string, int64, error) {
	m.saves++
	if m.saveFunc != nil {
		return m.saveFunc(ctx, ref, fileName, r)
	}
	n, err := io.Copy(io.Discard, r)
	return "stored-name.pdf", n, err
}

func (m *mockFileStore) Open(ctx context.Context, ref entity.LetterRef, storedName string) (io.ReadCloser, error) {
	if m.openFunc != nil {
		return m.openFunc(ctx, ref, storedName)
	}
	return io.NopCloser(strings.NewReader("content")), nil
}

type mockUserRepo struct {
	getByIDFunc func(ctx context.Context, id int64) (*entity.User, error)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.User{ID: id, Role: workflow.RoleTreasurer, Position: "Bendahara", Active: true}, nil
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return nil, nil
}
