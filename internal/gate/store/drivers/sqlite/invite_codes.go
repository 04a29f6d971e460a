package sqlite

import (
	"context"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

const inviteCodeColumns = `id, code, creator_email, max_uses, current_uses, is_active, created_at, updated_at`

type inviteCodesRepo struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInviteCode(row rowScanner) (domain.InviteCode, error) {
	var c domain.InviteCode
	err := row.Scan(&c.ID, &c.Code, &c.CreatorEmail, &c.MaxUses, &c.CurrentUses, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *inviteCodesRepo) CreateInviteCode(ctx context.Context, c domain.InviteCode) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invite_codes (`+inviteCodeColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID.String(), c.Code, c.CreatorEmail, c.MaxUses, c.CurrentUses, c.IsActive, c.CreatedAt.UTC(), c.UpdatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *inviteCodesRepo) GetInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+inviteCodeColumns+` FROM invite_codes WHERE code = ?`, code)
	c, err := scanInviteCode(row)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return c, nil
}

// LockInviteCodeByCode is a plain read here. Inside a transaction the
// connection already holds the database write lock (BEGIN IMMEDIATE).
func (r *inviteCodesRepo) LockInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error) {
	return r.GetInviteCodeByCode(ctx, code)
}

func (r *inviteCodesRepo) IncrementInviteCodeUses(ctx context.Context, id idx.ID) (domain.InviteCode, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE invite_codes
		    SET current_uses = current_uses + 1, updated_at = ?
		  WHERE id = ? AND is_active = 1 AND current_uses < max_uses`,
		now(), id.String(),
	)
	if err != nil {
		return domain.InviteCode{}, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return domain.InviteCode{}, err
	}
	if n == 0 {
		return domain.InviteCode{}, store.ErrQuotaExceeded
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+inviteCodeColumns+` FROM invite_codes WHERE id = ?`, id.String())
	c, err := scanInviteCode(row)
	if err != nil {
		return domain.InviteCode{}, mapNotFound(err)
	}
	return c, nil
}

func (r *inviteCodesRepo) CountActiveInviteCodes(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invite_codes WHERE is_active = 1 AND current_uses < max_uses`,
	).Scan(&n)
	return n, err
}
