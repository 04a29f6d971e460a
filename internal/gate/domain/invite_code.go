package domain

import (
	"time"

	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

const (
	// InviteCodeLength is the number of characters in a generated code.
	InviteCodeLength = 8

	MinMaxUses = 1
	MaxMaxUses = 100
)

// InviteCode grants up to MaxUses registrations. CurrentUses only ever grows
// and never exceeds MaxUses.
type InviteCode struct {
	ID           idx.ID
	Code         string
	CreatorEmail string
	MaxUses      int
	CurrentUses  int
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RemainingUses is MaxUses - CurrentUses, never negative.
func (c InviteCode) RemainingUses() int {
	return max(c.MaxUses-c.CurrentUses, 0)
}

// Exhausted reports whether every use has been consumed.
func (c InviteCode) Exhausted() bool {
	return c.CurrentUses >= c.MaxUses
}

// Redeemable reports whether the code can take one more registration.
func (c InviteCode) Redeemable() bool {
	return c.IsActive && !c.Exhausted()
}

// CodeUsage records one successful redemption of an invite code. A user
// email appears in at most one CodeUsage across all codes.
type CodeUsage struct {
	ID           idx.ID
	InviteCodeID idx.ID
	UserEmail    string
	IPAddress    string
	DeviceInfo   []byte // opaque JSON supplied by the client
	UsedAt       time.Time
}

// InviteCodeStats summarises the redemptions of one code.
type InviteCodeStats struct {
	Code          string
	UsageCount    int
	RemainingUses int
	Usages        []CodeUsage
}
