package entity

import (
	"time"
)

type AdVideoStatus string

const (
	AdVideoStatusPending    AdVideoStatus = "PENDING"
	AdVideoStatusInProgress AdVideoStatus = "IN_PROGRESS"
	AdVideoStatusCompleted  AdVideoStatus = "COMPLETED"
	AdVideoStatusFailed     AdVideoStatus = "FAILED"
)

// CanTransitionTo reports whether a status change is allowed. Status advances
// monotonically: once a job leaves PENDING it never returns to it.
func (s AdVideoStatus) CanTransitionTo(next AdVideoStatus) bool {
	if next == AdVideoStatusPending {
		return s == AdVideoStatusPending
	}
	return true
}

// AdVideo is the durable record for one ad-to-video generation request.
// Scenes are set once at creation and not mutated afterward; progress moves
// independently via partial updates.
type AdVideo struct {
	ID        int64         `json:"id"`
	OwnerID   string        `json:"owner_id,omitempty"`
	FunnelID  string        `json:"funnel_id,omitempty"`
	Status    AdVideoStatus `json:"status"`
	Scenes    []Scene       `json:"scenes"`
	Progress  int           `json:"progress"`
	ResultURL string        `json:"result_url,omitempty"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func NewAdVideo(ownerID, funnelID string, scenes []Scene) *AdVideo {
	now := time.Now().UTC()
	return &AdVideo{
		OwnerID:   ownerID,
		FunnelID:  funnelID,
		Status:    AdVideoStatusPending,
		Scenes:    scenes,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// UpdateFields is a partial update applied to a stored job. Nil fields are
// left untouched.
type UpdateFields struct {
	Status    *AdVideoStatus `json:"status,omitempty"`
	Progress  *int           `json:"progress,omitempty"`
	ResultURL *string        `json:"result_url,omitempty"`
	Error     *string        `json:"error,omitempty"`
}

// ApplyTo mutates job in place and refreshes UpdatedAt. Progress never moves
// backwards and status never regresses to PENDING.
func (f UpdateFields) ApplyTo(job *AdVideo) {
	if f.Status != nil && job.Status.CanTransitionTo(*f.Status) {
		job.Status = *f.Status
	}
	if f.Progress != nil && *f.Progress > job.Progress {
		job.Progress = *f.Progress
	}
	if f.ResultURL != nil {
		job.ResultURL = *f.ResultURL
	}
	if f.Error != nil {
		job.Error = *f.Error
	}
	job.UpdatedAt = time.Now().UTC()
}
