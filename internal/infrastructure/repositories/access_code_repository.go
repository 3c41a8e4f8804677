package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/you/classauth/domain"
)

// createRetries bounds how often CreateActive re-runs the supersede+insert
// transaction after losing a concurrent-create race.
const createRetries = 3

// AccessCodeRepositoryImpl implements domain.AccessCodeStore using GORM.
//
// Atomicity strategy: creation runs inside a transaction so superseding the
// prior active code and inserting the new one commit together; every other
// mutation is a single conditional UPDATE guarded by the current status, and
// RowsAffected discriminates the winner of a concurrent race from the losers.
type AccessCodeRepositoryImpl struct {
	db *gorm.DB
}

// DBAccessCode represents the database model for AccessCode (with GORM tags)
type DBAccessCode struct {
	ID          uint       `gorm:"primaryKey"`
	IdentityKey string     `gorm:"index;size:255"`
	UserID      uint       `gorm:"index"`
	CodeHash    string     `gorm:"size:64"`
	Status      string     `gorm:"index;size:16"`
	Attempts    int        `gorm:"not null;default:0"`
	MaxAttempts int        `gorm:"not null"`
	SentAt      time.Time
	ExpiresAt   time.Time `gorm:"index"`
	ConsumedAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (DBAccessCode) TableName() string {
	return "access_codes"
}

// NewAccessCodeRepository creates a new access-code repository
func NewAccessCodeRepository(db *gorm.DB) *AccessCodeRepositoryImpl {
	return &AccessCodeRepositoryImpl{db: db}
}

// MigrateAccessCodes creates the access_codes table and the partial unique
// index that makes "at most one active code per identity" a database
// constraint rather than an application-level promise. The connection must be
// opened with TranslateError so index violations surface as
// gorm.ErrDuplicatedKey.
func MigrateAccessCodes(db *gorm.DB) error {
	if err := db.AutoMigrate(&DBAccessCode{}); err != nil {
		return fmt.Errorf("failed to migrate access_codes: %w", err)
	}
	err := db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_access_codes_one_active
		ON access_codes (identity_key) WHERE status = 'active'`).Error
	if err != nil {
		return fmt.Errorf("failed to create active-code index: %w", err)
	}
	return nil
}

// CreateActive implements domain.AccessCodeStore. A still-active code for the
// same identity is expired in the same transaction as the insert. Under READ
// COMMITTED two concurrent creates can both pass the supersede UPDATE without
// seeing each other's insert, so the partial unique index is the authority:
// the loser's insert fails with a duplicate key and the whole transaction is
// retried against the winner's committed row.
func (r *AccessCodeRepositoryImpl) CreateActive(ctx context.Context, code *domain.AccessCode) (*domain.AccessCode, error) {
	for attempt := 0; ; attempt++ {
		dbCode := r.domainToDB(code)
		dbCode.ID = 0
		dbCode.Status = string(domain.CodeStatusActive)

		err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&DBAccessCode{}).
				Where("identity_key = ? AND status = ?", code.IdentityKey, domain.CodeStatusActive).
				Update("status", string(domain.CodeStatusExpired)).Error; err != nil {
				return fmt.Errorf("failed to supersede active code: %w", err)
			}
			if err := tx.Create(dbCode).Error; err != nil {
				return fmt.Errorf("failed to insert access code: %w", err)
			}
			return nil
		})
		if err == nil {
			return r.dbToDomain(dbCode), nil
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) && attempt < createRetries {
			continue
		}
		return nil, err
	}
}

// GetActiveByIdentity implements domain.AccessCodeStore
func (r *AccessCodeRepositoryImpl) GetActiveByIdentity(ctx context.Context, identityKey string) (*domain.AccessCode, error) {
	var dbCode DBAccessCode
	err := r.db.WithContext(ctx).
		Where("identity_key = ? AND status = ?", identityKey, domain.CodeStatusActive).
		First(&dbCode).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, domain.ErrCodeNotFound
		}
		return nil, err
	}
	return r.dbToDomain(&dbCode), nil
}

// IncrementAttempts implements domain.AccessCodeStore. The charge and the
// lockout decision are one UPDATE: reaching max_attempts flips the status to
// blocked in the same statement, so no concurrent verify can slip in between.
// If the row went terminal concurrently the increment is not applied and
// ErrCodeNotFound is returned.
func (r *AccessCodeRepositoryImpl) IncrementAttempts(ctx context.Context, id uint) (int, error) {
	var attempts int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&DBAccessCode{}).
			Where("id = ? AND status = ?", id, domain.CodeStatusActive).
			UpdateColumns(map[string]interface{}{
				"attempts": gorm.Expr("attempts + 1"),
				"status": gorm.Expr("CASE WHEN attempts + 1 >= max_attempts THEN ? ELSE status END",
					string(domain.CodeStatusBlocked)),
			})
		if res.Error != nil {
			return fmt.Errorf("failed to increment attempts: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.ErrCodeNotFound
		}

		var dbCode DBAccessCode
		if err := tx.Select("attempts").Where("id = ?", id).Take(&dbCode).Error; err != nil {
			return fmt.Errorf("failed to read attempts: %w", err)
		}
		attempts = dbCode.Attempts
		return nil
	})
	if err != nil {
		return 0, err
	}
	return attempts, nil
}

// TransitionToExpired implements domain.AccessCodeStore. Idempotent: a code
// that is already terminal stays untouched.
func (r *AccessCodeRepositoryImpl) TransitionToExpired(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&DBAccessCode{}).
		Where("id = ? AND status = ?", id, domain.CodeStatusActive).
		Update("status", string(domain.CodeStatusExpired))
	if res.Error != nil {
		return fmt.Errorf("failed to expire code: %w", res.Error)
	}
	// RowsAffected == 0 means the code was already terminal; that is a no-op.
	return nil
}

// Consume implements domain.AccessCodeStore. The status and expiry checks and
// the write are one conditional UPDATE, so exactly one concurrent verify call
// can win; everyone else observes zero affected rows and gets ErrCodeConsumed.
func (r *AccessCodeRepositoryImpl) Consume(ctx context.Context, id uint) (*domain.AccessCode, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&DBAccessCode{}).
		Where("id = ? AND status = ? AND expires_at > ?", id, domain.CodeStatusActive, now).
		Updates(map[string]interface{}{
			"status":      string(domain.CodeStatusConsumed),
			"consumed_at": now,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to consume code: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, domain.ErrCodeConsumed
	}

	var dbCode DBAccessCode
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&dbCode).Error; err != nil {
		return nil, fmt.Errorf("failed to reload consumed code: %w", err)
	}
	return r.dbToDomain(&dbCode), nil
}

// ListByIdentity implements domain.AccessCodeStore. Codes are never deleted;
// this is the audit trail, newest first.
func (r *AccessCodeRepositoryImpl) ListByIdentity(ctx context.Context, identityKey string, limit int) ([]*domain.AccessCode, error) {
	if limit <= 0 {
		limit = 50
	}
	var dbCodes []DBAccessCode
	err := r.db.WithContext(ctx).
		Where("identity_key = ?", identityKey).
		Order("id DESC").
		Limit(limit).
		Find(&dbCodes).Error
	if err != nil {
		return nil, err
	}

	codes := make([]*domain.AccessCode, 0, len(dbCodes))
	for i := range dbCodes {
		codes = append(codes, r.dbToDomain(&dbCodes[i]))
	}
	return codes, nil
}

// domainToDB converts domain access code to database access code
func (r *AccessCodeRepositoryImpl) domainToDB(code *domain.AccessCode) *DBAccessCode {
	return &DBAccessCode{
		ID:          code.ID,
		IdentityKey: code.IdentityKey,
		UserID:      code.UserID,
		CodeHash:    code.CodeHash,
		Status:      string(code.Status),
		Attempts:    code.Attempts,
		MaxAttempts: code.MaxAttempts,
		SentAt:      code.SentAt,
		ExpiresAt:   code.ExpiresAt,
		ConsumedAt:  code.ConsumedAt,
	}
}

// dbToDomain converts database access code to domain access code
func (r *AccessCodeRepositoryImpl) dbToDomain(dbCode *DBAccessCode) *domain.AccessCode {
	return &domain.AccessCode{
		ID:          dbCode.ID,
		IdentityKey: dbCode.IdentityKey,
		UserID:      dbCode.UserID,
		CodeHash:    dbCode.CodeHash,
		Status:      domain.CodeStatus(dbCode.Status),
		Attempts:    dbCode.Attempts,
		MaxAttempts: dbCode.MaxAttempts,
		SentAt:      dbCode.SentAt,
		ExpiresAt:   dbCode.ExpiresAt,
		ConsumedAt:  dbCode.ConsumedAt,
	}
}

// Compile-time interface compliance verification
var _ domain.AccessCodeStore = (*AccessCodeRepositoryImpl)(nil)
