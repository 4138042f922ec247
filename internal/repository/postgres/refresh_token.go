package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

type RefreshTokenRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewRefreshTokenRepository(writerDB, readerDB *gorm.DB) *RefreshTokenRepository {
	return &RefreshTokenRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *RefreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	return translateError(r.writerDB.WithContext(ctx).Omit("User").Create(token).Error)
}

// FindValidByHash reads from the writer so a token rotated a moment ago is
// never seen as valid through replica lag.
func (r *RefreshTokenRepository) FindValidByHash(ctx context.Context, hash string, now time.Time) (*domain.RefreshToken, error) {
	var token domain.RefreshToken
	err := r.writerDB.WithContext(ctx).
		Where("token = ? AND is_revoked = ? AND valid_until > ?", hash, false, now).
		First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// Revoke is idempotent; revoking a revoked or missing token is not an error
func (r *RefreshTokenRepository) Revoke(ctx context.Context, id string) error {
	return r.writerDB.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("id = ?", id).
		Update("is_revoked", true).Error
}

func (r *RefreshTokenRepository) RevokeAllForUser(ctx context.Context, userID string) (int64, error) {
	result := r.writerDB.WithContext(ctx).Model(&domain.RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true)
	return result.RowsAffected, result.Error
}

func (r *RefreshTokenRepository) Rotate(ctx context.Context, oldID string, next *domain.RefreshToken, now time.Time) error {
	return r.writerDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.RefreshToken{}).
			Where("id = ? AND is_revoked = ? AND valid_until > ?", oldID, false, now).
			Update("is_revoked", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != 1 {
			return repository.ErrRefreshTokenConsumed
		}
		return translateError(tx.Omit("User").Create(next).Error)
	})
}

func (r *RefreshTokenRepository) ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]domain.RefreshToken, error) {
	var tokens []domain.RefreshToken
	db := r.readerDB.WithContext(ctx).Where("valid_until <= ?", cutoff).Order("valid_until")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *RefreshTokenRepository) DeleteByIDs(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.writerDB.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.RefreshToken{})
	return result.RowsAffected, result.Error
}

func (r *RefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := r.writerDB.WithContext(ctx).Where("valid_until <= ?", now).Delete(&domain.RefreshToken{})
	return result.RowsAffected, result.Error
}
