package domain

import (
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

type RegistrationType string

const (
	RegistrationNFT        RegistrationType = "NFT"
	RegistrationInviteCode RegistrationType = "INVITE_CODE"
)

// Registration is created once per identity and never updated. Email and
// WalletAddress are each unique across all registrations.
type Registration struct {
	ID            idx.ID
	Email         string
	WalletAddress string
	InviteCode    string // empty for NFT registrations
	Signature     string
	Type          RegistrationType
	TokenID       *uint64
	CreatedAt     time.Time
}
