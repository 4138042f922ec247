package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

const maxPageSize = 100

// translateError maps gorm errors onto the repository sentinels
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repository.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repository.ErrDuplicate
	default:
		return err
	}
}

// paginate applies limit/offset, clamping the limit to maxPageSize
func paginate(db *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return db.Limit(limit).Offset(offset)
}

// affected turns a zero-row write into ErrNotFound
func affected(result *gorm.DB) error {
	if result.Error != nil {
		return translateError(result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
