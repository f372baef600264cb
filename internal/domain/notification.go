package domain

import (
	"time"

	"github.com/google/uuid"
)

type DonorNotification struct {
	ID             uuid.UUID               `json:"id" db:"id"`
	DonorID        uuid.UUID               `json:"donor_id" db:"donor_id"`
	BloodRequestID uuid.UUID               `json:"blood_request_id" db:"blood_request_id"`
	Status         DonorNotificationStatus `json:"status" db:"status"`
	CreatedAt      time.Time               `json:"created_at" db:"created_at"`
	ReadAt         *time.Time              `json:"read_at,omitempty" db:"read_at"`
	AcceptedAt     *time.Time              `json:"accepted_at,omitempty" db:"accepted_at"`

	Request *BloodRequest `json:"request,omitempty" db:"-"`
}

type DonorNotificationStatus string

const (
	NotifUnread DonorNotificationStatus = "UNREAD"
	NotifRead   DonorNotificationStatus = "READ"
	NotifClosed DonorNotificationStatus = "CLOSED"
)

func (s DonorNotificationStatus) IsValid() bool {
	switch s {
	case NotifUnread, NotifRead, NotifClosed:
		return true
	default:
		return false
	}
}

type RequesterNotification struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	RequesterID    uuid.UUID  `json:"requester_id" db:"requester_id"`
	BloodRequestID uuid.UUID  `json:"blood_request_id" db:"blood_request_id"`
	DonorID        uuid.UUID  `json:"donor_id" db:"donor_id"`
	Message        string     `json:"message" db:"message"`
	IsRead         bool       `json:"is_read" db:"is_read"`
	ReadAt         *time.Time `json:"read_at,omitempty" db:"read_at"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
}

// Acceptance is everything the coordinator commits in one transaction.
type Acceptance struct {
	RequestID      uuid.UUID
	NotificationID uuid.UUID
	DonorID        uuid.UUID
	RequesterID    uuid.UUID
	Message        string
	AcceptedAt     time.Time
}

// AcceptanceResult is returned to the winning donor.
type AcceptanceResult struct {
	Request               *BloodRequest          `json:"request"`
	RequesterNotification *RequesterNotification `json:"requester_notification"`
}

// MatchPlan is the donor selection for a request, computed before anything
// is written.
type MatchPlan struct {
	Refreshed  int64
	Candidates []DonorCandidate
}

func (p *MatchPlan) DonorIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(p.Candidates))
	for i, c := range p.Candidates {
		ids[i] = c.UserID
	}
	return ids
}

// MatchResult summarizes one approval fan-out.
type MatchResult struct {
	RequestID  uuid.UUID       `json:"request_id"`
	Refreshed  int64           `json:"refreshed"`
	Candidates int             `json:"candidates"`
	Notified   int             `json:"notified"`
	Dispatch   *DispatchResult `json:"dispatch,omitempty"`
}

// DispatchResult is for observability only; failed sends are not retried.
type DispatchResult struct {
	Total    int           `json:"total"`
	Sent     int           `json:"sent"`
	Skipped  int           `json:"skipped"`
	Failures []SendFailure `json:"failures,omitempty"`
}

type SendFailure struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}
