package entity

import "time"

// Disposition statuses. DONE and REJECTED are final: once reached, the
// record can no longer be mutated or deleted.
const (
	DispositionPending    = "PENDING"
	DispositionReceived   = "RECEIVED"
	DispositionInProgress = "IN_PROGRESS"
	DispositionDone       = "DONE"
	DispositionRejected   = "REJECTED"
)

// Disposition kinds (jenis disposisi)
const (
	DispositionKindTransfer          = "TRANSFER"
	DispositionKindRequestAttachment = "REQUEST_ATTACHMENT"
	DispositionKindApproval          = "APPROVAL"
	DispositionKindRevision          = "REVISION"
)

// Disposition is a routing instruction handing a letter's handling
// responsibility from one actor to another. Only the recipient may change
// its status.
type Disposition struct {
	ID          int64      `json:"id"`
	Letter      LetterRef  `json:"letter"`
	FromUserID  int64      `json:"from_user_id"`
	ToUserID    int64      `json:"to_user_id"`
	Kind        string     `json:"kind"`
	Instruction string     `json:"instruction"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

var validDispositionStatuses = map[string]bool{
	DispositionPending:    true,
	DispositionReceived:   true,
	DispositionInProgress: true,
	DispositionDone:       true,
	DispositionRejected:   true,
}

var validDispositionKinds = map[string]bool{
	DispositionKindTransfer:          true,
	DispositionKindRequestAttachment: true,
	DispositionKindApproval:          true,
	DispositionKindRevision:          true,
}

// IsValidDispositionStatus reports membership in the closed status set
func IsValidDispositionStatus(s string) bool {
	return validDispositionStatuses[s]
}

// IsValidDispositionKind reports membership in the closed kind set
func IsValidDispositionKind(k string) bool {
	return validDispositionKinds[k]
}

// IsFinal returns true once the disposition has reached DONE or REJECTED
func (d *Disposition) IsFinal() bool {
	return d.Status == DispositionDone || d.Status == DispositionRejected
}
