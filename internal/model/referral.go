package model

import (
	"time"
)

// ReferralEdge links a referred account to its single direct referrer.
// Created once at the referred account's signup, never mutated.
type ReferralEdge struct {
	ReferrerID string    `json:"referrer_id" db:"referrer_id"`
	ReferredID string    `json:"referred_id" db:"referred_id"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ReferralStats struct {
	TotalReferral  int    `json:"total_referral" db:"total_referral"`
	TodaysReferral int    `json:"todays_referral" db:"todays_referral"`
	TotalEarning   string `json:"total_earning" db:"total_earning"`
	TodaysEarning  string `json:"todays_earning" db:"todays_earning"`
	ReferralCode   string `json:"referral_code" db:"referral_code"`
}
