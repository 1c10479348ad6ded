package workflow

// Direction distinguishes the two letter registers, each with its own
// status enum and transition rules.
type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

// State represents a letter status in the correspondence workflow
type State string

// Incoming letter states, in processing order
const (
	StateReceived               State = "RECEIVED"
	StateUnderReview            State = "UNDER_REVIEW"
	StateRoutedToChair          State = "ROUTED_TO_CHAIR"
	StateRoutedToBoardSecretary State = "ROUTED_TO_BOARD_SECRETARY"
	StateRoutedToDeptHead       State = "ROUTED_TO_DEPT_HEAD"
	StateDone                   State = "DONE"
)

// Outgoing letter states. The main chain runs DRAFT through SENT; the two
// side states are reachable from any non-SENT main state.
const (
	StateDraft                  State = "DRAFT"
	StateReviewByBoardSecretary State = "REVIEW_BY_BOARD_SECRETARY"
	StateAttachmentByDeptHead   State = "ATTACHMENT_BY_DEPT_HEAD"
	StateReviewByChair          State = "REVIEW_BY_CHAIR"
	StateSent                   State = "SENT"
	StateRevisionRequested      State = "REVISION_REQUESTED"
	StateCancelled              State = "CANCELLED"
)

// incomingOrder is the strict total order for incoming letters.
// Exactly one step forward is legal per transition.
var incomingOrder = []State{
	StateReceived,
	StateUnderReview,
	StateRoutedToChair,
	StateRoutedToBoardSecretary,
	StateRoutedToDeptHead,
	StateDone,
}

// outgoingOrder is the main chain for outgoing letters. It is not a strict
// total order: REVIEW_BY_BOARD_SECRETARY may bypass the attachment stage
// straight to REVIEW_BY_CHAIR (see rules in table.go).
var outgoingOrder = []State{
	StateDraft,
	StateReviewByBoardSecretary,
	StateAttachmentByDeptHead,
	StateReviewByChair,
	StateSent,
}

var validStates = map[Direction]map[State]bool{
	DirectionIncoming: {
		StateReceived:               true,
		StateUnderReview:            true,
		StateRoutedToChair:          true,
		StateRoutedToBoardSecretary: true,
		StateRoutedToDeptHead:       true,
		StateDone:                   true,
	},
	DirectionOutgoing: {
		StateDraft:                  true,
		StateReviewByBoardSecretary: true,
		StateAttachmentByDeptHead:   true,
		StateReviewByChair:          true,
		StateSent:                   true,
		StateRevisionRequested:      true,
		StateCancelled:              true,
	},
}

var terminalStates = map[State]bool{
	StateDone:      true,
	StateSent:      true,
	StateCancelled: true,
}

// InitialState returns the state a freshly registered letter starts in.
// Deletion of a letter is only permitted while it is still in this state.
func InitialState(d Direction) State {
	if d == DirectionOutgoing {
		return StateDraft
	}
	return StateReceived
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValidFor returns true if the state belongs to the given direction's enum
func (s State) IsValidFor(d Direction) bool {
	return validStates[d][s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// position returns the index of s in the direction's main chain, or -1 for
// states outside the chain (the outgoing side states).
func position(d Direction, s State) int {
	order := incomingOrder
	if d == DirectionOutgoing {
		order = outgoingOrder
	}
	for i, st := range order {
		if st == s {
			return i
		}
	}
	return -1
}
