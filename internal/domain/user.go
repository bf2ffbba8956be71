package domain

import "time"

// UserPlan enumerates billing plans.
type UserPlan string

const (
	UserPlanFree UserPlan = "free"
	UserPlanPro  UserPlan = "pro"
)

// Profile represents an account as seen by the credit ledger and job system.
type Profile struct {
	ID            string
	Email         string
	Name          string
	Plan          UserPlan
	Credits       int
	Country       string
	SignupBonusAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsFree reports whether the profile is on the free plan.
func (p Profile) IsFree() bool {
	return p.Plan == UserPlanFree
}
