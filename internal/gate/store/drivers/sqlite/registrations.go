package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

type registrationsRepo struct {
	db dbtx
}

func (r *registrationsRepo) CreateRegistration(ctx context.Context, reg domain.Registration) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO registrations (id, email, wallet_address, invite_code, signature, registration_type, token_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		reg.ID.String(), reg.Email, reg.WalletAddress, reg.InviteCode, reg.Signature,
		string(reg.Type), mapUint64Null(reg.TokenID), reg.CreatedAt.UTC(),
	)
	return mapConstraint(err)
}

func (r *registrationsRepo) GetRegistrationByID(ctx context.Context, id idx.ID) (domain.Registration, error) {
	var (
		reg     domain.Registration
		typ     string
		tokenID sql.NullInt64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT id, email, wallet_address, invite_code, signature, registration_type, token_id, created_at
		   FROM registrations WHERE id = ?`, id.String(),
	).Scan(&reg.ID, &reg.Email, &reg.WalletAddress, &reg.InviteCode, &reg.Signature, &typ, &tokenID, &reg.CreatedAt)
	if err != nil {
		return domain.Registration{}, mapNotFound(err)
	}

	reg.Type = domain.RegistrationType(typ)
	reg.TokenID = mapNullUint64(tokenID)
	return reg, nil
}

func (r *registrationsRepo) EmailRegistered(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE email = ?)`, email)
}

func (r *registrationsRepo) WalletRegistered(ctx context.Context, wallet string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM registrations WHERE wallet_address = ?)`, wallet)
}

func (r *registrationsRepo) exists(ctx context.Context, query string, arg any) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *registrationsRepo) CountRegistrationsByType(ctx context.Context) (map[domain.RegistrationType]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT registration_type, COUNT(*) FROM registrations GROUP BY registration_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[domain.RegistrationType]int)
	for rows.Next() {
		var (
			typ string
			n   int
		)
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		out[domain.RegistrationType(typ)] = n
	}
	return out, rows.Err()
}
