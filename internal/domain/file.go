package domain

import "time"

type StoredFileStatus string

const (
	StoredFileStatusPending         StoredFileStatus = "PENDING"
	StoredFileStatusConfirmed       StoredFileStatus = "CONFIRMED"
	StoredFileStatusPendingDeletion StoredFileStatus = "PENDING_DELETION"
	StoredFileStatusDeleted         StoredFileStatus = "DELETED"
)

// StoredFile tracks an upload from the moment it lands in storage until a step
// confirms it or it is released for deletion.
type StoredFile struct {
	ID          string           `json:"id"`
	AgentID     string           `json:"agent_id"`
	FlowID      string           `json:"flow_id"`
	Path        string           `json:"path"`
	FileName    string           `json:"file_name"`
	MimeType    string           `json:"mime_type"`
	FileSize    int64            `json:"file_size"`
	Status      StoredFileStatus `json:"status"`
	CreatedOn   time.Time        `json:"created_on"`
	ConfirmedOn *time.Time       `json:"confirmed_on,omitempty"`
	DeletedOn   *time.Time       `json:"deleted_on,omitempty"`
}
