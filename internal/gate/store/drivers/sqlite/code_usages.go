package sqlite

import (
	"context"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

type codeUsagesRepo struct {
	db dbtx
}

func (r *codeUsagesRepo) CreateCodeUsage(ctx context.Context, u domain.CodeUsage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO code_usages (id, invite_code_id, user_email, ip_address, device_info, used_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID.String(), u.InviteCodeID.String(), u.UserEmail, u.IPAddress, u.DeviceInfo, u.UsedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *codeUsagesRepo) EmailRedeemed(ctx context.Context, email string) (bool, error) {
	var ok bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM code_usages WHERE user_email = ?)`, email,
	).Scan(&ok)
	return ok, err
}

func (r *codeUsagesRepo) ListCodeUsagesByInviteCode(ctx context.Context, inviteCodeID idx.ID) ([]domain.CodeUsage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, invite_code_id, user_email, ip_address, device_info, used_at
		   FROM code_usages WHERE invite_code_id = ? ORDER BY used_at, id`, inviteCodeID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CodeUsage
	for rows.Next() {
		var u domain.CodeUsage
		if err := rows.Scan(&u.ID, &u.InviteCodeID, &u.UserEmail, &u.IPAddress, &u.DeviceInfo, &u.UsedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
