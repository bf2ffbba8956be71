package domain

import "time"

// CreditEntryType enumerates ledger entry categories.
type CreditEntryType string

const (
	CreditEntryDebit        CreditEntryType = "debit"
	CreditEntryRefund       CreditEntryType = "refund"
	CreditEntrySubscription CreditEntryType = "subscription"
	CreditEntrySignupBonus  CreditEntryType = "signup_bonus"
	CreditEntryAdminGrant   CreditEntryType = "admin_grant"
)

// CreditEntry is an append-only audit record of one balance mutation. The
// balance itself lives on the profile row; entries are a derived projection.
type CreditEntry struct {
	ID           string
	UserID       string
	EntryType    CreditEntryType
	Amount       int
	BalanceAfter int
	JobID        *string
	Description  string
	CreatedAt    time.Time
}

// SignupBonusCredits is granted once when a profile is first provisioned.
const SignupBonusCredits = 10

var creditCosts = map[JobType]int{
	JobTypeAvatar:     1,
	JobTypeOutfitSwap: 2,
	JobTypeImageAd:    2,
	JobTypeVideoAd:    10,
	JobTypeMusic:      5,
	JobTypeVoiceover:  1,
	JobTypeVoiceClone: 8,
	JobTypeUpscale:    1,
}

// CreditCost returns the debit amount charged for one job of the given type.
func CreditCost(t JobType) int {
	if cost, ok := creditCosts[t]; ok {
		return cost
	}
	return 1
}
