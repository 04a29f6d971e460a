package domain

import (
	"errors"
	"math"
	"time"
)

// RequiredStakeDuration is how long a token must stay staked before its
// owner may register.
const RequiredStakeDuration = 7 * 24 * time.Hour

// MaxTokenID is the largest token id the store can hold in a signed 64 bit
// column without the value turning negative.
const MaxTokenID = math.MaxInt64

var ErrInvalidTokenID = errors.New("domain: token id out of range")

// ValidateTokenID rejects ids above MaxTokenID.
func ValidateTokenID(id uint64) error {
	if id > MaxTokenID {
		return ErrInvalidTokenID
	}
	return nil
}

// Stake is the staking ledger's record for one token.
type Stake struct {
	IsStaked bool
	// Since is when the token was staked. Zero if never staked.
	Since time.Time
}

// Eligibility is the outcome of an eligibility check. RemainingTime is only
// set when the token is staked.
type Eligibility struct {
	IsEligible    bool
	RemainingTime *time.Duration
}

// EvaluateStake applies the staking rule at now:
//
//	remaining = max(0, RequiredStakeDuration - (now - since))
//	eligible  = staked && remaining == 0
func EvaluateStake(s Stake, now time.Time) Eligibility {
	if !s.IsStaked {
		return Eligibility{}
	}

	remaining := max(RequiredStakeDuration-now.Sub(s.Since), 0)
	return Eligibility{
		IsEligible:    remaining == 0,
		RemainingTime: &remaining,
	}
}

// RemainingSeconds returns RemainingTime in whole seconds, rounded up so a
// caller never retries early. Nil when RemainingTime is nil.
func (e Eligibility) RemainingSeconds() *int64 {
	if e.RemainingTime == nil {
		return nil
	}
	secs := int64((*e.RemainingTime + time.Second - 1) / time.Second)
	return &secs
}
