package postgres

import (
	"context"
	"time"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type inviteCodesRepo struct {
	db *gorm.DB
}

func (r *inviteCodesRepo) CreateInviteCode(ctx context.Context, c domain.InviteCode) error {
	row := toInviteCodeRow(c)
	return mapError(r.db.WithContext(ctx).Create(&row).Error)
}

func (r *inviteCodesRepo) GetInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	var row inviteCodeRow
	if err := r.db.WithContext(ctx).Where("code = ?", code).Take(&row).Error; err != nil {
		return domain.InviteCode{}, mapError(err)
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) LockInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	var row inviteCodeRow
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("code = ?", code).
		Take(&row).Error
	if err != nil {
		return domain.InviteCode{}, mapError(err)
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) IncrementInviteCodeUses(ctx context.Context, id idx.ID) (domain.InviteCode, error) {
	var row inviteCodeRow
	res := r.db.WithContext(ctx).
		Model(&row).
		Clauses(clause.Returning{}).
		Where("id = ? AND is_active AND current_uses < max_uses", id.String()).
		Updates(map[string]any{
			"current_uses": gorm.Expr("current_uses + 1"),
			"updated_at":   time.Now().UTC(),
		})
	if res.Error != nil {
		return domain.InviteCode{}, mapError(res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.InviteCode{}, store.ErrQuotaExceeded
	}
	return row.toDomain(), nil
}

func (r *inviteCodesRepo) CountActiveInviteCodes(ctx context.Context) (int, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&inviteCodeRow{}).
		Where("is_active AND current_uses < max_uses").
		Count(&n).Error
	return int(n), err
}

type registrationsRepo struct {
	db *gorm.DB
}

func (r *registrationsRepo) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	row := toRegistrationRow(reg)
	return mapError(r.db.WithContext(ctx).Create(&row).Error)
}

func (r *registrationsRepo) GetRegistrationByID(ctx context.Context, id idx.ID) (domain.Registration, error) {
	var row registrationRow
	if err := r.db.WithContext(ctx).Where("id = ?", id.String()).Take(&row).Error; err != nil {
		return domain.Registration{}, mapError(err)
	}
	return row.toDomain(), nil
}

func (r *registrationsRepo) EmailRegistered(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, &registrationRow{}, "email = ?", email)
}

func (r *registrationsRepo) WalletRegistered(ctx context.Context, wallet string) (bool, error) {
	return exists(ctx, r.db, &registrationRow{}, "wallet_address = ?", wallet)
}

func (r *registrationsRepo) CountRegistrationsByType(ctx context.Context) (map[domain.RegistrationType]int, error) {
	type typeCount struct {
		RegistrationType string
		N                int
	}

	var rows []typeCount
	err := r.db.WithContext(ctx).
		Model(&registrationRow{}).
		Select("registration_type, COUNT(*) AS n").
		Group("registration_type").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return lo.SliceToMap(rows, func(tc typeCount) (domain.RegistrationType, int) {
		return domain.RegistrationType(tc.RegistrationType), tc.N
	}), nil
}

type codeUsagesRepo struct {
	db *gorm.DB
}

func (r *codeUsagesRepo) CreateCodeUsage(ctx context.Context, u domain.CodeUsage) error {
	row := toCodeUsageRow(u)
	return mapError(r.db.WithContext(ctx).Omit(clause.Associations).Create(&row).Error)
}

func (r *codeUsagesRepo) EmailRedeemed(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.db, &codeUsageRow{}, "user_email = ?", email)
}

func (r *codeUsagesRepo) ListCodeUsagesByInviteCode(ctx context.Context, inviteCodeID idx.ID) ([]domain.CodeUsage, error) {
	var rows []codeUsageRow
	err := r.db.WithContext(ctx).
		Where("invite_code_id = ?", inviteCodeID.String()).
		Order("used_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row codeUsageRow, _ int) domain.CodeUsage { return row.toDomain() }), nil
}

func exists(ctx context.Context, db *gorm.DB, model any, query string, arg any) (bool, error) {
	var n int64
	err := db.WithContext(ctx).Model(model).Where(query, arg).Limit(1).Count(&n).Error
	return n > 0, err
}
