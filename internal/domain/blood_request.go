package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

type BloodRequest struct {
	ID              uuid.UUID          `json:"id" db:"id"`
	RequesterID     uuid.UUID          `json:"requester_id" db:"requester_id"`
	RequesterEmail  string             `json:"requester_email" db:"requester_email"`
	ContactName     string             `json:"contact_name" db:"contact_name"`
	ContactPhone    string             `json:"contact_phone" db:"contact_phone"`
	ContactEmail    *string            `json:"contact_email,omitempty" db:"contact_email"`
	BloodGroup      BloodGroup         `json:"blood_group" db:"blood_group"`
	Urgency         Urgency            `json:"urgency" db:"urgency"`
	Location        string             `json:"location" db:"location"`
	Hospital        *string            `json:"hospital,omitempty" db:"hospital"`
	PatientName     *string            `json:"patient_name,omitempty" db:"patient_name"`
	UnitsNeeded     *int               `json:"units_needed,omitempty" db:"units_needed"`
	Notes           *string            `json:"notes,omitempty" db:"notes"`
	Status          BloodRequestStatus `json:"status" db:"status"`
	ModeratorID     *uuid.UUID         `json:"moderator_id,omitempty" db:"moderator_id"`
	AcceptedDonorID *uuid.UUID         `json:"accepted_donor_id,omitempty" db:"accepted_donor_id"`
	CreatedAt       time.Time          `json:"created_at" db:"created_at"`
	ApprovedAt      *time.Time         `json:"approved_at,omitempty" db:"approved_at"`
	AcceptedAt      *time.Time         `json:"accepted_at,omitempty" db:"accepted_at"`
	UpdatedAt       time.Time          `json:"updated_at" db:"updated_at"`
}

type BloodGroup string

const (
	BloodAPositive  BloodGroup = "A_POSITIVE"
	BloodANegative  BloodGroup = "A_NEGATIVE"
	BloodBPositive  BloodGroup = "B_POSITIVE"
	BloodBNegative  BloodGroup = "B_NEGATIVE"
	BloodABPositive BloodGroup = "AB_POSITIVE"
	BloodABNegative BloodGroup = "AB_NEGATIVE"
	BloodOPositive  BloodGroup = "O_POSITIVE"
	BloodONegative  BloodGroup = "O_NEGATIVE"
)

func (g BloodGroup) IsValid() bool {
	switch g {
	case BloodAPositive, BloodANegative, BloodBPositive, BloodBNegative,
		BloodABPositive, BloodABNegative, BloodOPositive, BloodONegative:
		return true
	default:
		return false
	}
}

// Label renders the group the way it is written on a donor card, e.g. "AB-".
func (g BloodGroup) Label() string {
	abo, rh, ok := strings.Cut(string(g), "_")
	if !ok {
		return string(g)
	}
	if rh == "POSITIVE" {
		return abo + "+"
	}
	return abo + "-"
}

type Urgency string

const (
	UrgencyUrgent   Urgency = "URGENT"
	UrgencyModerate Urgency = "MODERATE"
	UrgencyNormal   Urgency = "NORMAL"
)

func (u Urgency) IsValid() bool {
	switch u {
	case UrgencyUrgent, UrgencyModerate, UrgencyNormal:
		return true
	default:
		return false
	}
}

type BloodRequestStatus string

const (
	RequestPending   BloodRequestStatus = "PENDING"
	RequestApproved  BloodRequestStatus = "APPROVED"
	RequestRejected  BloodRequestStatus = "REJECTED"
	RequestFulfilled BloodRequestStatus = "FULFILLED"
)

func (s BloodRequestStatus) IsValid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected, RequestFulfilled:
		return true
	default:
		return false
	}
}

type Decision string

const (
	DecisionApprove Decision = "APPROVED"
	DecisionReject  Decision = "REJECTED"
)

func ParseDecision(v string) (Decision, error) {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "APPROVED", "APPROVE":
		return DecisionApprove, nil
	case "REJECTED", "REJECT":
		return DecisionReject, nil
	default:
		return "", NewValidationError("decision must be APPROVED or REJECTED")
	}
}

// Status is the request status a decision moves a PENDING request to.
func (d Decision) Status() BloodRequestStatus {
	if d == DecisionApprove {
		return RequestApproved
	}
	return RequestRejected
}

type CreateBloodRequestInput struct {
	ContactName  string     `json:"contact_name" validate:"required,min=2,max=120"`
	ContactPhone string     `json:"contact_phone" validate:"required"`
	ContactEmail *string    `json:"contact_email,omitempty" validate:"omitempty,email"`
	BloodGroup   BloodGroup `json:"blood_group" validate:"required,bloodgroup"`
	Urgency      Urgency    `json:"urgency" validate:"required,urgency"`
	Location     string     `json:"location" validate:"required,max=255"`
	Hospital     *string    `json:"hospital,omitempty" validate:"omitempty,max=255"`
	PatientName  *string    `json:"patient_name,omitempty" validate:"omitempty,max=120"`
	UnitsNeeded  *int       `json:"units_needed,omitempty" validate:"omitempty,min=1,max=20"`
	Notes        *string    `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type DecisionInput struct {
	Decision string `json:"decision"`
}

// RequestFilter narrows List. RequesterID is set by the service, never
// taken from the caller.
type RequestFilter struct {
	Status      *BloodRequestStatus
	RequesterID *uuid.UUID
}

var phonePattern = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// NormalizePhone strips spaces and hyphens and checks the result.
func NormalizePhone(raw string) (string, bool) {
	cleaned := strings.NewReplacer(" ", "", "-", "").Replace(strings.TrimSpace(raw))
	return cleaned, phonePattern.MatchString(cleaned)
}

// DecisionResult is returned to the moderator. Match is set on approval.
type DecisionResult struct {
	Request *BloodRequest `json:"request"`
	Match   *MatchResult  `json:"match,omitempty"`
}
