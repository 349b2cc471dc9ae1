package models

import "time"

type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

type Job struct {
	ID             string
	UserID         string
	Status         JobStatus
	ImageVersionID string
	// MachineID is the remote allocation handle, recorded once provisioning
	// succeeds. Nil for jobs whose machine was never confirmed.
	MachineID *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
