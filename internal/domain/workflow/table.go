package workflow

import "fmt"

// edge is one legal transition plus the roles allowed to perform it
type edge struct {
	to    State
	roles map[Role]bool
}

func roleSet(roles ...Role) map[Role]bool {
	set := make(map[Role]bool, len(roles))
	for _, r := range roles {
		set[r] = true
	}
	return set
}

func deptHeads() map[Role]bool {
	return roleSet(RoleDeptHeadHR, RoleDeptHeadFinance, RoleDeptHeadGeneral)
}

// incomingEdges encodes the incoming-letter chain: strictly one step forward,
// each step owned by a single stage-holder. The Treasurer holds no step; it
// only ever receives dispositions.
var incomingEdges = map[State][]edge{
	StateReceived: {
		{to: StateUnderReview, roles: roleSet(RoleAdmin)},
	},
	StateUnderReview: {
		{to: StateRoutedToChair, roles: roleSet(RoleAdmin)},
	},
	StateRoutedToChair: {
		{to: StateRoutedToBoardSecretary, roles: roleSet(RoleChairperson)},
	},
	StateRoutedToBoardSecretary: {
		{to: StateRoutedToDeptHead, roles: roleSet(RoleBoardSecretary)},
	},
	StateRoutedToDeptHead: {
		{to: StateDone, roles: deptHeads()},
	},
}

// outgoingEdges encodes the outgoing-letter DAG. The board secretary may
// skip the attachment stage and route straight to the chair; that bypass is
// the only deviation from the main chain besides the revision/cancel side
// states, which the current stage-holder may enter from any non-SENT state.
var outgoingEdges = map[State][]edge{
	StateDraft: {
		{to: StateReviewByBoardSecretary, roles: roleSet(RoleAdmin)},
		{to: StateRevisionRequested, roles: roleSet(RoleAdmin)},
		{to: StateCancelled, roles: roleSet(RoleAdmin)},
	},
	StateReviewByBoardSecretary: {
		{to: StateAttachmentByDeptHead, roles: roleSet(RoleBoardSecretary)},
		{to: StateReviewByChair, roles: roleSet(RoleBoardSecretary)},
		{to: StateRevisionRequested, roles: roleSet(RoleBoardSecretary)},
		{to: StateCancelled, roles: roleSet(RoleBoardSecretary)},
	},
	StateAttachmentByDeptHead: {
		{to: StateReviewByChair, roles: deptHeads()},
		{to: StateRevisionRequested, roles: deptHeads()},
		{to: StateCancelled, roles: deptHeads()},
	},
	StateReviewByChair: {
		{to: StateSent, roles: roleSet(RoleChairperson)},
		{to: StateRevisionRequested, roles: roleSet(RoleChairperson)},
		{to: StateCancelled, roles: roleSet(RoleChairperson)},
	},
	// The one legal regression: a revision cycle re-enters DRAFT.
	StateRevisionRequested: {
		{to: StateDraft, roles: roleSet(RoleAdmin)},
	},
}

func edgesFor(d Direction) map[State][]edge {
	if d == DirectionOutgoing {
		return outgoingEdges
	}
	return incomingEdges
}

// Validate checks whether the actor's role may move a letter of the given
// direction from current to requested. It returns nil on a legal transition,
// ErrForbidden when the transition exists but the role is not in its table,
// and ErrInvalidTransition (or ErrInvalidState) otherwise. The wrapped
// messages distinguish a regression from a stage not yet reachable.
func Validate(d Direction, current, requested State, role Role) error {
	if !requested.IsValidFor(d) {
		return fmt.Errorf("%w: %s is not a %s letter state", ErrInvalidState, requested, d)
	}
	if !current.IsValidFor(d) {
		return fmt.Errorf("%w: letter holds unknown state %s", ErrInvalidState, current)
	}

	for _, e := range edgesFor(d)[current] {
		if e.to != requested {
			continue
		}
		if e.roles[role] {
			return nil
		}
		return fmt.Errorf("%w: %s may not move %s letter from %s to %s",
			ErrForbidden, role, d, current, requested)
	}

	curPos, reqPos := position(d, current), position(d, requested)
	if curPos >= 0 && reqPos >= 0 && reqPos <= curPos {
		return fmt.Errorf("%w: letter is already at or past %s (current %s)",
			ErrInvalidTransition, requested, current)
	}
	return fmt.Errorf("%w: %s is not yet reachable from %s",
		ErrInvalidTransition, requested, current)
}

// StageHolder reports whether the role currently holds the letter at the
// given state, i.e. owns at least one outgoing transition. Disposition
// creation is gated on this: only the stage-holder can hand the letter off.
func StageHolder(d Direction, current State, role Role) bool {
	for _, e := range edgesFor(d)[current] {
		if e.roles[role] {
			return true
		}
	}
	return false
}

// PermittedTransitions returns the states the role may move a letter to from
// the current state, in table order. Empty for terminal states.
func PermittedTransitions(d Direction, current State, role Role) []State {
	var states []State
	for _, e := range edgesFor(d)[current] {
		if e.roles[role] {
			states = append(states, e.to)
		}
	}
	return states
}
