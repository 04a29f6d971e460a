package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/invitegate/internal/gate/domain"
	"github.com/aussiebroadwan/invitegate/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrDuplicateEmail and ErrDuplicateWallet are returned when a unique
	// identity constraint rejects a write.
	ErrDuplicateEmail  = errors.New("store: email already registered")
	ErrDuplicateWallet = errors.New("store: wallet already registered")

	// ErrQuotaExceeded is returned when a guarded increment finds the code
	// inactive or already at MaxUses.
	ErrQuotaExceeded = errors.New("store: invite code quota exceeded")
)

// Store is the authoritative source of truth. Concrete drivers (sqlite,
// postgres) implement it and expose sub-repositories so nobody opens a
// transaction inside a transaction by accident.
type Store interface {
	InviteCodes() InviteCodes
	Registrations() Registrations
	CodeUsages() CodeUsages

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds
// Commit/Rollback and identity locks.
type Tx interface {
	Store
	Commit() error
	Rollback() error

	// LockKeys takes exclusive locks on arbitrary identity keys (an email, a
	// wallet) held until the transaction ends. Drivers that already serialise
	// writers at BEGIN may treat this as a no-op.
	LockKeys(ctx context.Context, keys ...string) error
}

type InviteCodes interface {
	// CreateInviteCode inserts a code; ErrAlreadyExists if the code is taken.
	CreateInviteCode(ctx context.Context, c domain.InviteCode) error

	// GetInviteCodeByCode is a plain read.
	GetInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// LockInviteCodeByCode reads the row and holds an exclusive lock on it
	// until the surrounding transaction ends.
	LockInviteCodeByCode(ctx context.Context, code string) (domain.InviteCode, error)

	// IncrementInviteCodeUses bumps current_uses by one only while the code
	// is active and below max_uses, returning the updated row. Otherwise it
	// returns ErrQuotaExceeded and changes nothing.
	IncrementInviteCodeUses(ctx context.Context, id idx.ID) (domain.InviteCode, error)

	// CountActiveInviteCodes counts active codes with uses left.
	CountActiveInviteCodes(ctx context.Context) (int, error)
}

type Registrations interface {
	// CreateRegistration inserts r. A taken email or wallet yields
	// ErrDuplicateEmail or ErrDuplicateWallet.
	CreateRegistration(ctx context.Context, r domain.Registration) error

	GetRegistrationByID(ctx context.Context, id idx.ID) (domain.Registration, error)

	EmailRegistered(ctx context.Context, email string) (bool, error)
	WalletRegistered(ctx context.Context, wallet string) (bool, error)

	// CountRegistrationsByType returns a count for every type present.
	CountRegistrationsByType(ctx context.Context) (map[domain.RegistrationType]int, error)
}

type CodeUsages interface {
	// CreateCodeUsage inserts u; ErrDuplicateEmail if the user email has
	// already redeemed any code.
	CreateCodeUsage(ctx context.Context, u domain.CodeUsage) error

	// EmailRedeemed reports whether email has a usage on any code.
	EmailRedeemed(ctx context.Context, email string) (bool, error)

	// ListCodeUsagesByInviteCode returns usages oldest first.
	ListCodeUsagesByInviteCode(ctx context.Context, inviteCodeID idx.ID) ([]domain.CodeUsage, error)
}
