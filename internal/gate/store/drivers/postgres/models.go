package postgres

import (
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

type inviteCodeRow struct {
	ID           string    `gorm:"primaryKey;type:char(26)"`
	Code         string    `gorm:"type:varchar(16);not null;uniqueIndex:invite_codes_code_key"`
	CreatorEmail string    `gorm:"type:varchar(254);not null"`
	MaxUses      int       `gorm:"not null;check:invite_codes_max_uses_range,max_uses BETWEEN 1 AND 100"`
	CurrentUses  int       `gorm:"not null;check:invite_codes_current_uses_range,current_uses >= 0 AND current_uses <= max_uses"`
	IsActive     bool      `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (inviteCodeRow) TableName() string { return "invite_codes" }

type codeUsageRow struct {
	ID           string    `gorm:"primaryKey;type:char(26)"`
	InviteCodeID string    `gorm:"type:char(26);not null;index:code_usages_invite_code_id_idx,priority:1"`
	UserEmail    string    `gorm:"type:varchar(254);not null;uniqueIndex:code_usages_user_email_key"`
	IPAddress    string    `gorm:"type:varchar(64);not null"`
	DeviceInfo   []byte    `gorm:"type:jsonb"`
	UsedAt       time.Time `gorm:"not null;index:code_usages_invite_code_id_idx,priority:2"`

	InviteCode inviteCodeRow `gorm:"foreignKey:InviteCodeID;constraint:OnDelete:RESTRICT"`
}

func (codeUsageRow) TableName() string { return "code_usages" }

type registrationRow struct {
	ID               string    `gorm:"primaryKey;type:char(26)"`
	Email            string    `gorm:"type:varchar(254);not null;uniqueIndex:registrations_email_key"`
	WalletAddress    string    `gorm:"type:char(42);not null;uniqueIndex:registrations_wallet_address_key"`
	InviteCode       string    `gorm:"type:varchar(16);not null"`
	Signature        string    `gorm:"type:text;not null"`
	RegistrationType string    `gorm:"type:varchar(16);not null"`
	TokenID          *int64    `gorm:"type:bigint"`
	CreatedAt        time.Time `gorm:"not null"`
}

func (registrationRow) TableName() string { return "registrations" }

func toInviteCodeRow(c domain.InviteCode) inviteCodeRow {
	return inviteCodeRow{
		ID:           c.ID.String(),
		Code:         c.Code,
		CreatorEmail: c.CreatorEmail,
		MaxUses:      c.MaxUses,
		CurrentUses:  c.CurrentUses,
		IsActive:     c.IsActive,
		CreatedAt:    c.CreatedAt.UTC(),
		UpdatedAt:    c.UpdatedAt.UTC(),
	}
}

func (r inviteCodeRow) toDomain() domain.InviteCode {
	return domain.InviteCode{
		ID:           idx.ID(r.ID),
		Code:         r.Code,
		CreatorEmail: r.CreatorEmail,
		MaxUses:      r.MaxUses,
		CurrentUses:  r.CurrentUses,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toCodeUsageRow(u domain.CodeUsage) codeUsageRow {
	return codeUsageRow{
		ID:           u.ID.String(),
		InviteCodeID: u.InviteCodeID.String(),
		UserEmail:    u.UserEmail,
		IPAddress:    u.IPAddress,
		DeviceInfo:   u.DeviceInfo,
		UsedAt:       u.UsedAt.UTC(),
	}
}

func (r codeUsageRow) toDomain() domain.CodeUsage {
	return domain.CodeUsage{
		ID:           idx.ID(r.ID),
		InviteCodeID: idx.ID(r.InviteCodeID),
		UserEmail:    r.UserEmail,
		IPAddress:    r.IPAddress,
		DeviceInfo:   r.DeviceInfo,
		UsedAt:       r.UsedAt,
	}
}

func toRegistrationRow(r domain.Registration) registrationRow {
	row := registrationRow{
		ID:               r.ID.String(),
		Email:            r.Email,
		WalletAddress:    r.WalletAddress,
		InviteCode:       r.InviteCode,
		Signature:        r.Signature,
		RegistrationType: string(r.Type),
		CreatedAt:        r.CreatedAt.UTC(),
	}
	if r.TokenID != nil {
		v := int64(*r.TokenID)
		row.TokenID = &v
	}
	return row
}

func (r registrationRow) toDomain() domain.Registration {
	reg := domain.Registration{
		ID:            idx.ID(r.ID),
		Email:         r.Email,
		WalletAddress: r.WalletAddress,
		InviteCode:    r.InviteCode,
		Signature:     r.Signature,
		Type:          domain.RegistrationType(r.RegistrationType),
		CreatedAt:     r.CreatedAt,
	}
	if r.TokenID != nil {
		v := uint64(*r.TokenID)
		reg.TokenID = &v
	}
	return reg
}
