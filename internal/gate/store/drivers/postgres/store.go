package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aussiebroadwan/invitegate/internal/gate/store"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/lo"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Store is the postgres driver. Invite rows are locked with SELECT ... FOR
// UPDATE and identity keys with transaction scoped advisory locks, so
// several processes can share one database safely.
type Store struct {
	db *gorm.DB
}

// DSN builds a key/value connection string.
func DSN(host string, port int, user, password, dbname, sslmode string) string {
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)
}

func NewStore(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// ApplyMigrations creates or updates the schema from the row models.
func (s *Store) ApplyMigrations() error {
	return s.db.AutoMigrate(&inviteCodeRow{}, &codeUsageRow{}, &registrationRow{})
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &txStore{db: tx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) InviteCodes() store.InviteCodes     { return &inviteCodesRepo{db: s.db} }
func (s *Store) Registrations() store.Registrations { return &registrationsRepo{db: s.db} }
func (s *Store) CodeUsages() store.CodeUsages       { return &codeUsagesRepo{db: s.db} }

type txStore struct {
	db *gorm.DB
}

func (t *txStore) Commit() error { return t.db.Commit().Error }

func (t *txStore) Rollback() error {
	err := t.db.Rollback().Error
	if errors.Is(err, gorm.ErrInvalidTransaction) {
		return nil
	}
	return err
}

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, gorm.ErrInvalidTransaction
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return gorm.ErrInvalidTransaction
}

// LockKeys takes pg_advisory_xact_lock on each distinct key in sorted order.
// The locks are released at commit or rollback.
func (t *txStore) LockKeys(ctx context.Context, keys ...string) error {
	keys = lo.Uniq(keys)
	sort.Strings(keys)

	for _, k := range keys {
		if err := t.db.WithContext(ctx).Exec(`SELECT pg_advisory_xact_lock(hashtext(?))`, k).Error; err != nil {
			return fmt.Errorf("advisory lock %q: %w", k, err)
		}
	}
	return nil
}

func (t *txStore) InviteCodes() store.InviteCodes     { return &inviteCodesRepo{db: t.db} }
func (t *txStore) Registrations() store.Registrations { return &registrationsRepo{db: t.db} }
func (t *txStore) CodeUsages() store.CodeUsages       { return &codeUsagesRepo{db: t.db} }

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case "registrations_email_key", "code_usages_user_email_key":
		return store.ErrDuplicateEmail
	case "registrations_wallet_address_key":
		return store.ErrDuplicateWallet
	default:
		return store.ErrAlreadyExists
	}
}
