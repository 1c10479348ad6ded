package workflow

import (
	"errors"
	"testing"
)

func TestState_IsTerminal(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateReceived, false},
		{StateUnderReview, false},
		{StateRoutedToChair, false},
		{StateRoutedToBoardSecretary, false},
		{StateRoutedToDeptHead, false},
		{StateDone, true},
		{StateDraft, false},
		{StateReviewByBoardSecretary, false},
		{StateAttachmentByDeptHead, false},
		{StateReviewByChair, false},
		{StateRevisionRequested, false},
		{StateSent, true},
		{StateCancelled, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.state), func(t *testing.T) {
			if got := tt.state.IsTerminal(); got != tt.expected {
				t.Errorf("State.IsTerminal() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_IsValidFor(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		direction Direction
		expected  bool
	}{
		{"incoming state in incoming enum", StateReceived, DirectionIncoming, true},
		{"outgoing state in outgoing enum", StateDraft, DirectionOutgoing, true},
		{"outgoing state not in incoming enum", StateDraft, DirectionIncoming, false},
		{"incoming state not in outgoing enum", StateRoutedToChair, DirectionOutgoing, false},
		{"unknown state", State("SHREDDED"), DirectionIncoming, false},
		{"empty state", State(""), DirectionOutgoing, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.IsValidFor(tt.direction); got != tt.expected {
				t.Errorf("State.IsValidFor(%s) = %v, want %v", tt.direction, got, tt.expected)
			}
		})
	}
}

func TestInitialState(t *testing.T) {
	if got := InitialState(DirectionIncoming); got != StateReceived {
		t.Errorf("InitialState(incoming) = %s, want %s", got, StateReceived)
	}
	if got := InitialState(DirectionOutgoing); got != StateDraft {
		t.Errorf("InitialState(outgoing) = %s, want %s", got, StateDraft)
	}
}

func TestRole_IsDeptHead(t *testing.T) {
	for _, r := range []Role{RoleDeptHeadHR, RoleDeptHeadFinance, RoleDeptHeadGeneral} {
		if !r.IsDeptHead() {
			t.Errorf("Role(%s).IsDeptHead() = false, want true", r)
		}
	}
	for _, r := range []Role{RoleAdmin, RoleChairperson, RoleBoardSecretary, RoleTreasurer} {
		if r.IsDeptHead() {
			t.Errorf("Role(%s).IsDeptHead() = true, want false", r)
		}
	}
}

func TestRole_PositionLabel(t *testing.T) {
	if got := RoleChairperson.PositionLabel(); got != "Ketua Yayasan" {
		t.Errorf("PositionLabel() = %q, want %q", got, "Ketua Yayasan")
	}
	// Unknown roles fall back to the raw value
	if got := Role("INTERN").PositionLabel(); got != "INTERN" {
		t.Errorf("PositionLabel() = %q, want %q", got, "INTERN")
	}
}

func TestValidate_IncomingChain(t *testing.T) {
	steps := []struct {
		current   State
		requested State
		role      Role
	}{
		{StateReceived, StateUnderReview, RoleAdmin},
		{StateUnderReview, StateRoutedToChair, RoleAdmin},
		{StateRoutedToChair, StateRoutedToBoardSecretary, RoleChairperson},
		{StateRoutedToBoardSecretary, StateRoutedToDeptHead, RoleBoardSecretary},
		{StateRoutedToDeptHead, StateDone, RoleDeptHeadHR},
	}

	for _, s := range steps {
		t.Run(string(s.current)+"->"+string(s.requested), func(t *testing.T) {
			if err := Validate(DirectionIncoming, s.current, s.requested, s.role); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidate_IncomingForbiddenRoles(t *testing.T) {
	tests := []struct {
		name      string
		current   State
		requested State
		role      Role
	}{
		{"chair cannot perform admin step", StateUnderReview, StateRoutedToChair, RoleChairperson},
		{"admin cannot perform chair step", StateRoutedToChair, StateRoutedToBoardSecretary, RoleAdmin},
		{"treasurer holds no step", StateReceived, StateUnderReview, RoleTreasurer},
		{"secretary cannot close", StateRoutedToDeptHead, StateDone, RoleBoardSecretary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(DirectionIncoming, tt.current, tt.requested, tt.role)
			if !errors.Is(err, ErrForbidden) {
				t.Errorf("Validate() = %v, want ErrForbidden", err)
			}
		})
	}
}

func TestValidate_IncomingInvalidTransitions(t *testing.T) {
	tests := []struct {
		name      string
		current   State
		requested State
	}{
		{"skip one stage", StateReceived, StateRoutedToChair},
		{"skip to done", StateUnderReview, StateDone},
		{"regression", StateRoutedToBoardSecretary, StateUnderReview},
		{"same state", StateUnderReview, StateUnderReview},
		{"from terminal", StateDone, StateDone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(DirectionIncoming, tt.current, tt.requested, RoleAdmin)
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Validate() = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestValidate_InvalidStateForDirection(t *testing.T) {
	err := Validate(DirectionIncoming, StateReceived, StateDraft, RoleAdmin)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Validate() = %v, want ErrInvalidState", err)
	}

	err = Validate(DirectionOutgoing, StateDraft, State("BURNED"), RoleAdmin)
	if !errors.Is(err, ErrInvalidState) {
		t.Errorf("Validate() = %v, want ErrInvalidState", err)
	}
}

func TestValidate_OutgoingChain(t *testing.T) {
	steps := []struct {
		name      string
		current   State
		requested State
		role      Role
	}{
		{"draft to review", StateDraft, StateReviewByBoardSecretary, RoleAdmin},
		{"review to attachment", StateReviewByBoardSecretary, StateAttachmentByDeptHead, RoleBoardSecretary},
		{"bypass attachment stage", StateReviewByBoardSecretary, StateReviewByChair, RoleBoardSecretary},
		{"attachment to chair review", StateAttachmentByDeptHead, StateReviewByChair, RoleDeptHeadFinance},
		{"chair sends", StateReviewByChair, StateSent, RoleChairperson},
	}

	for _, s := range steps {
		t.Run(s.name, func(t *testing.T) {
			if err := Validate(DirectionOutgoing, s.current, s.requested, s.role); err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidate_OutgoingSkipToSent(t *testing.T) {
	err := Validate(DirectionOutgoing, StateDraft, StateSent, RoleChairperson)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Validate() = %v, want ErrInvalidTransition", err)
	}
}

func TestValidate_OutgoingSideStates(t *testing.T) {
	tests := []struct {
		name      string
		current   State
		requested State
		role      Role
		wantErr   error
	}{
		{"holder requests revision", StateReviewByChair, StateRevisionRequested, RoleChairperson, nil},
		{"holder cancels", StateAttachmentByDeptHead, StateCancelled, RoleDeptHeadGeneral, nil},
		{"non-holder cannot cancel", StateReviewByChair, StateCancelled, RoleAdmin, ErrForbidden},
		{"revision re-enters draft", StateRevisionRequested, StateDraft, RoleAdmin, nil},
		{"only admin re-enters draft", StateRevisionRequested, StateDraft, RoleBoardSecretary, ErrForbidden},
		{"sent is final", StateSent, StateCancelled, RoleChairperson, ErrInvalidTransition},
		{"cancelled is final", StateCancelled, StateDraft, RoleAdmin, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(DirectionOutgoing, tt.current, tt.requested, tt.role)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_RegressionMessageDistinguished(t *testing.T) {
	past := Validate(DirectionIncoming, StateRoutedToDeptHead, StateReceived, RoleAdmin)
	ahead := Validate(DirectionIncoming, StateReceived, StateDone, RoleAdmin)

	if !errors.Is(past, ErrInvalidTransition) || !errors.Is(ahead, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v / %v", past, ahead)
	}
	if past.Error() == ahead.Error() {
		t.Error("regression and not-yet-reachable should produce distinct messages")
	}
}

func TestStageHolder(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		state     State
		role      Role
		expected  bool
	}{
		{"admin holds received", DirectionIncoming, StateReceived, RoleAdmin, true},
		{"chair holds routed-to-chair", DirectionIncoming, StateRoutedToChair, RoleChairperson, true},
		{"any dept head holds dept stage", DirectionIncoming, StateRoutedToDeptHead, RoleDeptHeadFinance, true},
		{"treasurer holds nothing", DirectionIncoming, StateReceived, RoleTreasurer, false},
		{"admin does not hold chair stage", DirectionIncoming, StateRoutedToChair, RoleAdmin, false},
		{"nobody holds done", DirectionIncoming, StateDone, RoleAdmin, false},
		{"secretary holds outgoing review", DirectionOutgoing, StateReviewByBoardSecretary, RoleBoardSecretary, true},
		{"nobody holds sent", DirectionOutgoing, StateSent, RoleChairperson, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StageHolder(tt.direction, tt.state, tt.role); got != tt.expected {
				t.Errorf("StageHolder() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestPermittedTransitions(t *testing.T) {
	got := PermittedTransitions(DirectionOutgoing, StateReviewByBoardSecretary, RoleBoardSecretary)
	want := []State{StateAttachmentByDeptHead, StateReviewByChair, StateRevisionRequested, StateCancelled}
	if len(got) != len(want) {
		t.Fatalf("PermittedTransitions() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("PermittedTransitions()[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	if got := PermittedTransitions(DirectionIncoming, StateDone, RoleAdmin); len(got) != 0 {
		t.Errorf("PermittedTransitions() from terminal = %v, want empty", got)
	}
}
