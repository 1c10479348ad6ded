package entity

import (
	"time"

	"github.com/uptpik/amanat/internal/domain/workflow"
)

// IncomingLetter is a registered surat masuk. The workflow engine mutates
// only Status and UpdatedAt; the descriptive fields are opaque payload.
type IncomingLetter struct {
	ID           int64          `json:"id"`
	AgendaNumber string         `json:"agenda_number"`
	LetterNumber string         `json:"letter_number"`
	Subject      string         `json:"subject"`
	Sender       string         `json:"sender"`
	Category     string         `json:"category"`
	LetterDate   time.Time      `json:"letter_date"`
	ReceivedDate time.Time      `json:"received_date"`
	Status       workflow.State `json:"status"`
	CreatedBy    int64          `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// OutgoingLetter is a registered surat keluar. SentAt is stamped once when
// the chairperson moves the letter to SENT.
type OutgoingLetter struct {
	ID           int64          `json:"id"`
	AgendaNumber string         `json:"agenda_number"`
	LetterNumber string         `json:"letter_number"`
	Subject      string         `json:"subject"`
	Recipient    string         `json:"recipient"`
	Category     string         `json:"category"`
	LetterDate   time.Time      `json:"letter_date"`
	Status       workflow.State `json:"status"`
	SentAt       *time.Time     `json:"sent_at,omitempty"`
	CreatedBy    int64          `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// LetterRef points at exactly one letter of either register. Tracking
// entries, dispositions and attachments all hang off such a reference.
type LetterRef struct {
	Direction workflow.Direction `json:"direction"`
	ID        int64              `json:"id"`
}

// IncomingRef returns a reference to an incoming letter
func IncomingRef(id int64) LetterRef {
	return LetterRef{Direction: workflow.DirectionIncoming, ID: id}
}

// OutgoingRef returns a reference to an outgoing letter
func OutgoingRef(id int64) LetterRef {
	return LetterRef{Direction: workflow.DirectionOutgoing, ID: id}
}
