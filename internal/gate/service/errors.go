package service

import (
	"errors"
	"fmt"
	"time"
)

// Business rejections are permanent for the request. Only
// ErrEligibilityCheckFailed and ErrInternal are worth retrying.
var (
	ErrInvalidRequest         = errors.New("invalid request")
	ErrRateLimited            = errors.New("too many attempts, please try again later")
	ErrInvalidCode            = errors.New("invalid invite code")
	ErrCodeInactive           = errors.New("invite code is inactive")
	ErrCodeExhausted          = errors.New("invite code has reached maximum uses")
	ErrEmailAlreadyUsed       = errors.New("email already registered")
	ErrWalletAlreadyUsed      = errors.New("wallet already registered")
	ErrInvalidSignature       = errors.New("invalid signature")
	ErrEligibilityNotMet      = errors.New("nft staking requirement not met")
	ErrEligibilityCheckFailed = errors.New("error checking token eligibility")
	ErrNotFound               = errors.New("not found")
	ErrInternal               = errors.New("internal error")
)

// RateLimitedError carries how long the caller should wait.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("%s (retry after %s)", ErrRateLimited, e.RetryAfter)
}

func (e *RateLimitedError) Unwrap() error { return ErrRateLimited }

// IsRetryable reports whether retrying err could change the outcome.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrEligibilityCheckFailed) || errors.Is(err, ErrInternal)
}

func internal(err error) error {
	return fmt.Errorf("%w: %w", ErrInternal, err)
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
