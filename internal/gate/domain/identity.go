package domain

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/aussiebroadwan/invitegate/pkg/cryptox"
)

var (
	ErrInvalidEmail  = errors.New("domain: invalid email address")
	ErrInvalidWallet = errors.New("domain: invalid wallet address")
	ErrInvalidCode   = errors.New("domain: invalid invite code format")
)

// NormalizeEmail trims and lower-cases a bare address. Display names
// ("Alice <a@x>") are rejected.
func NormalizeEmail(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || len(s) > 254 {
		return "", ErrInvalidEmail
	}

	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return "", ErrInvalidEmail
	}
	return s, nil
}

// NormalizeWallet validates a 0x-prefixed 20 byte hex address and returns it
// lower-cased so checksum variants compare equal.
func NormalizeWallet(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !cryptox.IsAddress(s) {
		return "", ErrInvalidWallet
	}
	return strings.ToLower(s), nil
}

// NormalizeCode trims whitespace and checks the length. Codes are case
// sensitive.
func NormalizeCode(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) != InviteCodeLength {
		return "", ErrInvalidCode
	}
	return s, nil
}
