package entity

import "time"

// Attachment is the metadata record for a file (lampiran) stored alongside
// a letter. Records are immutable once written; the bytes themselves live
// on disk under the stored name.
type Attachment struct {
	ID          int64     `json:"id"`
	Letter      LetterRef `json:"letter"`
	FileName    string    `json:"file_name"`
	StoredName  string    `json:"stored_name"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedBy  int64     `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
