package entity

import (
	"time"

	"github.com/uptpik/amanat/internal/domain/workflow"
)

// TrackingEntry is one immutable audit record. Exactly one entry is written
// per accepted status transition, in the same transaction as the status
// update; ordered by CreatedAt the entries reconstruct the letter's full
// status history.
type TrackingEntry struct {
	ID          int64          `json:"id"`
	Letter      LetterRef      `json:"letter"`
	Stage       workflow.State `json:"stage"`
	Position    string         `json:"position"`
	Description string         `json:"description"`
	CreatedBy   int64          `json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
}
