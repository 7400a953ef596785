package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	DocStatusPending    = "pending"
	DocStatusProcessing = "processing"
	DocStatusReady      = "ready"
	DocStatusFailed     = "failed"
)

const (
	SourceDrive  = "drive"
	SourceUpload = "upload"
)

type Document struct {
	ID          uuid.UUID `json:"id" db:"id"`
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Title       string    `json:"title" db:"title"`
	SourceType  string    `json:"source_type" db:"source_type"`
	DriveFileID string    `json:"drive_file_id,omitempty" db:"drive_file_id"`
	FilePath    string    `json:"file_path,omitempty" db:"file_path"`
	URL         string    `json:"url,omitempty" db:"url"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}
