package gatesdk

import (
	"encoding/json"
	"time"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// CheckResponse answers the verify-code, email-used and wallet-used
// endpoints. Success means the code is usable or the identity is unused.
type CheckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ReserveRequest redeems an invite code. DeviceInfo is stored verbatim.
type ReserveRequest struct {
	Code          string          `json:"code"`
	Email         string          `json:"email"`
	WalletAddress string          `json:"walletAddress"`
	Signature     string          `json:"signature"`
	DeviceInfo    json.RawMessage `json:"deviceInfo,omitempty"`
}

// RegisterNFTRequest registers with a staked NFT instead of an invite code.
type RegisterNFTRequest struct {
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress"`
	TokenID       uint64 `json:"tokenId"`
	Signature     string `json:"signature"`
}

// ReservationResponse is returned by both reservation endpoints.
type ReservationResponse struct {
	Success        bool   `json:"success"`
	RegistrationID string `json:"registrationId"`
}

// EligibilityResponse reports staking eligibility. RemainingTime is in
// seconds and only present when the token is staked.
type EligibilityResponse struct {
	IsEligible    bool   `json:"isEligible"`
	RemainingTime *int64 `json:"remainingTime,omitempty"`
}

// CreateInviteCodeRequest mints a code. CreatorEmail is ignored when the
// server authenticates creators with bearer tokens.
type CreateInviteCodeRequest struct {
	CreatorEmail string `json:"creatorEmail,omitempty"`
	MaxUses      int    `json:"maxUses"`
}

type InviteCodeResponse struct {
	Code         string    `json:"code"`
	CreatorEmail string    `json:"creatorEmail"`
	MaxUses      int       `json:"maxUses"`
	CurrentUses  int       `json:"currentUses"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type CodeUsageResponse struct {
	ID         string          `json:"id"`
	UserEmail  string          `json:"userEmail"`
	IPAddress  string          `json:"ipAddress,omitempty"`
	DeviceInfo json.RawMessage `json:"deviceInfo,omitempty"`
	UsedAt     time.Time       `json:"usedAt"`
}

// InviteCodeStatsResponse summarises redemptions of one code.
type InviteCodeStatsResponse struct {
	Code          string              `json:"code"`
	UsageCount    int                 `json:"usageCount"`
	RemainingUses int                 `json:"remainingUses"`
	Usages        []CodeUsageResponse `json:"usages"`
}

// HealthResponse is served by /livez and /readyz.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
