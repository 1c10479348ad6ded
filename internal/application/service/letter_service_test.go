package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uptpik/amanat/internal/application/port"
	"github.com/uptpik/amanat/internal/domain/entity"
	"github.com/uptpik/amanat/internal/domain/workflow"
)

func newLetterService(in *mockIncomingRepo, out *mockOutgoingRepo, tr *mockTrackingRepo, tx *mockTxManager) LetterService {
	return NewLetterService(in, out, tr, tx, nopLogger{})
}

func TestCreateIncoming_GeneratesAgendaNumber(t *testing.T) {
	in := &mockIncomingRepo{}
	tr := &mockTrackingRepo{}
	svc := newLetterService(in, &mockOutgoingRepo{}, tr, &mockTxManager{})

	letter, err := svc.CreateIncoming(context.Background(), CreateIncomingInput{
		Subject: "Permohonan Audiensi",
		Sender:  "Dinas Pendidikan",
	}, entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	require.NoError(t, err)

	wantPrefix := fmt.Sprintf("SM-%s-", time.Now().Format("200601"))
	assert.Equal(t, wantPrefix+"0001", letter.AgendaNumber)
	assert.Equal(t, workflow.StateReceived, letter.Status)

	// registration itself is audited
	require.Len(t, tr.entries, 1)
	assert.Equal(t, workflow.StateReceived, tr.entries[0].Stage)
	assert.Equal(t, "Sekretaris Kantor", tr.entries[0].Position)
}

func TestCreateIncoming_IncrementsAgendaCounter(t *testing.T) {
	in := &mockIncomingRepo{
		lastAgendaFunc: func(ctx context.Context, prefix string) (string, error) {
			return prefix + "0041", nil
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	letter, err := svc.CreateIncoming(context.Background(), CreateIncomingInput{
		Subject: "Undangan Rapat",
		Sender:  "Kecamatan",
	}, entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	require.NoError(t, err)
	assert.True(t, len(letter.AgendaNumber) > 4)
	assert.Equal(t, "0042", letter.AgendaNumber[len(letter.AgendaNumber)-4:])
}

func TestCreateIncoming_NonAdminForbidden(t *testing.T) {
	svc := newLetterService(&mockIncomingRepo{}, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.CreateIncoming(context.Background(), CreateIncomingInput{
		Subject: "x", Sender: "y",
	}, entity.Actor{ID: 2, Role: workflow.RoleChairperson})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestAdvanceIncoming_HappyPath(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateReceived}, nil
		},
	}
	tr := &mockTrackingRepo{}
	tx := &mockTxManager{}
	svc := newLetterService(in, &mockOutgoingRepo{}, tr, tx)

	letter, err := svc.AdvanceIncoming(context.Background(), 7, workflow.StateUnderReview,
		entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	require.NoError(t, err)

	assert.Equal(t, workflow.StateUnderReview, letter.Status)
	assert.Equal(t, 1, in.statusUpdates)
	assert.Equal(t, 1, tx.calls)
	require.Len(t, tr.entries, 1)
	assert.Equal(t, workflow.StateUnderReview, tr.entries[0].Stage)
	assert.Equal(t, entity.IncomingRef(7), tr.entries[0].Letter)
}

func TestAdvanceIncoming_WrongRoleLeavesStatusUntouched(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateUnderReview}, nil
		},
	}
	tr := &mockTrackingRepo{}
	svc := newLetterService(in, &mockOutgoingRepo{}, tr, &mockTxManager{})

	_, err := svc.AdvanceIncoming(context.Background(), 7, workflow.StateRoutedToChair,
		entity.Actor{ID: 2, Role: workflow.RoleChairperson})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
	assert.Zero(t, in.statusUpdates)
	assert.Empty(t, tr.entries)
}

func TestAdvanceIncoming_SkipRejected(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateReceived}, nil
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.AdvanceIncoming(context.Background(), 7, workflow.StateDone,
		entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	assert.Zero(t, in.statusUpdates)
}

func TestAdvanceIncoming_NotFound(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return nil, nil
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.AdvanceIncoming(context.Background(), 99, workflow.StateUnderReview,
		entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	assert.ErrorIs(t, err, port.ErrNotFound)
}

func TestAdvanceIncoming_ConcurrentAdvanceSurfacesConflict(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateReceived}, nil
		},
		updateStatusIfFunc: func(ctx context.Context, id int64, expected, next workflow.State, now time.Time) error {
			// another request won the compare-and-swap
			return fmt.Errorf("%w: letter %d no longer %s", port.ErrConflict, id, expected)
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.AdvanceIncoming(context.Background(), 7, workflow.StateUnderReview,
		entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	assert.ErrorIs(t, err, port.ErrConflict)
}

func TestAdvanceIncoming_DeadlineMapsToTimeout(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return nil, context.DeadlineExceeded
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.AdvanceIncoming(context.Background(), 7, workflow.StateUnderReview,
		entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	assert.ErrorIs(t, err, port.ErrTimeout)
}

func TestAdvanceIncoming_FullChain(t *testing.T) {
	current := workflow.StateReceived
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: current}, nil
		},
	}
	tr := &mockTrackingRepo{}
	svc := newLetterService(in, &mockOutgoingRepo{}, tr, &mockTxManager{})

	steps := []struct {
		requested workflow.State
		actor     entity.Actor
	}{
		{workflow.StateUnderReview, entity.Actor{ID: 1, Role: workflow.RoleAdmin}},
		{workflow.StateRoutedToChair, entity.Actor{ID: 1, Role: workflow.RoleAdmin}},
		{workflow.StateRoutedToBoardSecretary, entity.Actor{ID: 2, Role: workflow.RoleChairperson}},
		{workflow.StateRoutedToDeptHead, entity.Actor{ID: 3, Role: workflow.RoleBoardSecretary}},
		{workflow.StateDone, entity.Actor{ID: 4, Role: workflow.RoleDeptHeadHR}},
	}
	for _, step := range steps {
		letter, err := svc.AdvanceIncoming(context.Background(), 7, step.requested, step.actor)
		require.NoError(t, err, "step to %s", step.requested)
		current = letter.Status
	}

	// the tracking history replays the exact status sequence
	require.Len(t, tr.entries, len(steps))
	for i, step := range steps {
		assert.Equal(t, step.requested, tr.entries[i].Stage)
	}
}

func TestAdvanceOutgoing_SentStampsDispatchTime(t *testing.T) {
	out := &mockOutgoingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
			return &entity.OutgoingLetter{ID: id, Status: workflow.StateReviewByChair}, nil
		},
	}
	svc := newLetterService(&mockIncomingRepo{}, out, &mockTrackingRepo{}, &mockTxManager{})

	letter, err := svc.AdvanceOutgoing(context.Background(), 3, workflow.StateSent,
		entity.Actor{ID: 2, Role: workflow.RoleChairperson})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateSent, letter.Status)
	require.NotNil(t, letter.SentAt)
	assert.Equal(t, 1, out.sentStamps)
}

func TestAdvanceOutgoing_BypassAttachmentStage(t *testing.T) {
	out := &mockOutgoingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
			return &entity.OutgoingLetter{ID: id, Status: workflow.StateReviewByBoardSecretary}, nil
		},
	}
	svc := newLetterService(&mockIncomingRepo{}, out, &mockTrackingRepo{}, &mockTxManager{})

	letter, err := svc.AdvanceOutgoing(context.Background(), 3, workflow.StateReviewByChair,
		entity.Actor{ID: 3, Role: workflow.RoleBoardSecretary})
	require.NoError(t, err)
	assert.Equal(t, workflow.StateReviewByChair, letter.Status)
	assert.Zero(t, out.sentStamps)
}

func TestAdvanceOutgoing_SkipToSentRejected(t *testing.T) {
	out := &mockOutgoingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.OutgoingLetter, error) {
			return &entity.OutgoingLetter{ID: id, Status: workflow.StateDraft}, nil
		},
	}
	svc := newLetterService(&mockIncomingRepo{}, out, &mockTrackingRepo{}, &mockTxManager{})

	_, err := svc.AdvanceOutgoing(context.Background(), 3, workflow.StateSent,
		entity.Actor{ID: 2, Role: workflow.RoleChairperson})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
	assert.Zero(t, out.statusUpdates)
}

func TestDeleteIncoming_OnlyInInitialState(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateUnderReview}, nil
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	err := svc.DeleteIncoming(context.Background(), 7, entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	assert.ErrorIs(t, err, port.ErrConflict)
	assert.Zero(t, in.deletes)
}

func TestDeleteIncoming_InitialStateSucceeds(t *testing.T) {
	in := &mockIncomingRepo{
		getByIDFunc: func(ctx context.Context, id int64) (*entity.IncomingLetter, error) {
			return &entity.IncomingLetter{ID: id, Status: workflow.StateReceived}, nil
		},
	}
	svc := newLetterService(in, &mockOutgoingRepo{}, &mockTrackingRepo{}, &mockTxManager{})

	err := svc.DeleteIncoming(context.Background(), 7, entity.Actor{ID: 1, Role: workflow.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, 1, in.deletes)
}
