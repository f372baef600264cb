package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDonationCooldown is the gap after a donation before a donor is
// eligible again.
const DefaultDonationCooldown = 90 * 24 * time.Hour

type DonorProfile struct {
	ID                     uuid.UUID  `json:"id" db:"id"`
	UserID                 uuid.UUID  `json:"user_id" db:"user_id"`
	BloodGroup             BloodGroup `json:"blood_group" db:"blood_group"`
	IsAvailable            bool       `json:"is_available" db:"is_available"`
	AvailabilityOverridden bool       `json:"availability_overridden" db:"availability_overridden"`
	LastDonationDate       *time.Time `json:"last_donation_date,omitempty" db:"last_donation_date"`
	District               string     `json:"district" db:"district"`
	Location               *string    `json:"location,omitempty" db:"location"`
	Phone                  *string    `json:"phone,omitempty" db:"phone"`
	PhotoURL               *string    `json:"photo_url,omitempty" db:"photo_url"`
	CreatedAt              time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at" db:"updated_at"`
}

// DonorCandidate is a matched donor joined with the contact data needed to
// reach them.
type DonorCandidate struct {
	DonorProfile
	Email    string `json:"email" db:"email"`
	FullName string `json:"full_name" db:"full_name"`
}

type CreateDonorProfileInput struct {
	BloodGroup       BloodGroup `json:"blood_group" validate:"required,bloodgroup"`
	District         string     `json:"district" validate:"required,max=120"`
	Location         *string    `json:"location,omitempty" validate:"omitempty,max=255"`
	Phone            *string    `json:"phone,omitempty"`
	LastDonationDate *time.Time `json:"last_donation_date,omitempty"`
	IsAvailable      *bool      `json:"is_available,omitempty"`
}

type UpdateDonorProfileInput struct {
	BloodGroup       *BloodGroup `json:"blood_group,omitempty" validate:"omitempty,bloodgroup"`
	District         *string     `json:"district,omitempty" validate:"omitempty,max=120"`
	Location         *string     `json:"location,omitempty" validate:"omitempty,max=255"`
	Phone            *string     `json:"phone,omitempty"`
	LastDonationDate *time.Time  `json:"last_donation_date,omitempty"`
	IsAvailable      *bool       `json:"is_available,omitempty"`
}

// EligibilityPolicy decides automatic availability.
type EligibilityPolicy struct {
	Cooldown time.Duration
	// Regions holds lower-cased district names. Empty means every district.
	Regions map[string]struct{}
}

func NewEligibilityPolicy(cooldown time.Duration, regions []string) EligibilityPolicy {
	if cooldown <= 0 {
		cooldown = DefaultDonationCooldown
	}
	p := EligibilityPolicy{Cooldown: cooldown, Regions: make(map[string]struct{})}
	for _, r := range regions {
		if r = strings.ToLower(strings.TrimSpace(r)); r != "" {
			p.Regions[r] = struct{}{}
		}
	}
	return p
}

func (p EligibilityPolicy) RegionEligible(district string) bool {
	if len(p.Regions) == 0 {
		return true
	}
	_, ok := p.Regions[strings.ToLower(strings.TrimSpace(district))]
	return ok
}

// RegionList returns the configured regions, nil when unrestricted.
func (p EligibilityPolicy) RegionList() []string {
	if len(p.Regions) == 0 {
		return nil
	}
	out := make([]string, 0, len(p.Regions))
	for r := range p.Regions {
		out = append(out, r)
	}
	return out
}

// CooldownElapsed is true when no donation is recorded or at least the
// cooldown has passed since the last one.
func (p EligibilityPolicy) CooldownElapsed(lastDonation *time.Time, now time.Time) bool {
	if lastDonation == nil {
		return true
	}
	return !now.Before(lastDonation.Add(p.Cooldown))
}

// AutoAvailability is the availability a donor gets when nobody set it by hand.
func (p EligibilityPolicy) AutoAvailability(district string, lastDonation *time.Time, now time.Time) bool {
	return p.RegionEligible(district) && p.CooldownElapsed(lastDonation, now)
}

// CooldownCutoff is the latest last-donation date that is eligible at now.
func (p EligibilityPolicy) CooldownCutoff(now time.Time) time.Time {
	return now.Add(-p.Cooldown)
}
