package queue

const (
	TypeDriveSync = "drive:sync"
	TypeIngest    = "document:ingest"
)

type DriveSyncPayload struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
}

type IngestPayload struct {
	DocumentID string `json:"document_id"`
	UserID     string `json:"user_id"`
}
