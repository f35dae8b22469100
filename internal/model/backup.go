package model

import "time"

type BackupStatus string

const (
	BackupStatusPending   BackupStatus = "pending"
	BackupStatusUploading BackupStatus = "uploading"
	BackupStatusCompleted BackupStatus = "completed"
	BackupStatusFailed    BackupStatus = "failed"
)

// BackupTrigger records what started a backup run.
type BackupTrigger string

const (
	BackupTriggerScheduled BackupTrigger = "scheduled"
	BackupTriggerManual    BackupTrigger = "manual"
)

// Backup is one encrypted snapshot of the fusionmeals database in object
// storage. The counts describe what the snapshot captured and are zero until
// the upload completes.
type Backup struct {
	ID              int64         `json:"id"`
	Filename        string        `json:"filename"`
	S3Key           string        `json:"s3_key"`
	Trigger         BackupTrigger `json:"trigger"`
	Status          BackupStatus  `json:"status"`
	SizeBytes       int64         `json:"size_bytes"`
	UserCount       int64         `json:"user_count"`
	PantryItemCount int64         `json:"pantry_item_count"`
	ErrorMessage    string        `json:"error_message,omitempty"`
	StartedAt       *time.Time    `json:"started_at,omitempty"`
	CompletedAt     *time.Time    `json:"completed_at,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
}

// BackupContents is the row count summary taken alongside a snapshot.
type BackupContents struct {
	Users       int64
	PantryItems int64
}
