package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

// UserRepository relies on the tenant filter installed on both handles; none of
// its queries name tenant_id themselves.
type UserRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewUserRepository(writerDB, readerDB *gorm.DB) *UserRepository {
	return &UserRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	return translateError(r.writerDB.WithContext(ctx).Omit(clause.Associations).Create(user).Error)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.readerDB.WithContext(ctx).Preload("Tenant").First(&user, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.readerDB.WithContext(ctx).Preload("Tenant").
		First(&user, "email = ?", domain.NormalizeEmail(email)).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindAllByEmail(ctx context.Context, email string) ([]domain.User, error) {
	var users []domain.User
	err := r.readerDB.WithContext(ctx).Preload("Tenant").
		Where("email = ?", domain.NormalizeEmail(email)).
		Order("created_at").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

func (r *UserRepository) EmailExists(ctx context.Context, email string, excludeID string) (bool, error) {
	var count int64
	db := r.readerDB.WithContext(ctx).Model(&domain.User{}).
		Where("email = ?", domain.NormalizeEmail(email))
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *UserRepository) List(ctx context.Context, filter domain.UserFilter) ([]domain.User, int64, error) {
	db := r.readerDB.WithContext(ctx).Model(&domain.User{})

	if filter.Email != "" {
		db = db.Where("email LIKE ?", "%"+domain.NormalizeEmail(filter.Email)+"%")
	}
	if filter.Role != "" {
		db = db.Where("roles @> ?", fmt.Sprintf(`[%q]`, filter.Role))
	}
	if filter.Active != nil {
		db = db.Where("is_active = ?", *filter.Active)
	}
	// count and page must not share a statement
	db = db.Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []domain.User
	if err := paginate(db, filter.Limit, filter.Offset).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Update writes every mutable column. Rows of other tenants are never matched
// and come back as ErrNotFound.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	user.Email = domain.NormalizeEmail(user.Email)
	return affected(r.writerDB.WithContext(ctx).Model(user).
		Select("email", "password", "first_name", "last_name", "roles", "is_active", "updated_at").
		Updates(user))
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return affected(r.writerDB.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}))
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return affected(r.writerDB.WithContext(ctx).Model(&domain.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login_at", at))
}
