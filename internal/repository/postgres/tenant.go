package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type TenantRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewTenantRepository(writerDB, readerDB *gorm.DB) *TenantRepository {
	return &TenantRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *TenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	tenant.Subdomain = domain.NormalizeSubdomain(tenant.Subdomain)
	return translateError(r.writerDB.WithContext(ctx).Create(tenant).Error)
}

func (r *TenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := r.readerDB.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &tenant, nil
}

func (r *TenantRepository) GetBySubdomain(ctx context.Context, subdomain string) (*domain.Tenant, error) {
	var tenant domain.Tenant
	err := r.readerDB.WithContext(ctx).
		First(&tenant, "subdomain = ?", domain.NormalizeSubdomain(subdomain)).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &tenant, nil
}

func (r *TenantRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	var count int64
	err := r.readerDB.WithContext(ctx).Model(&domain.Tenant{}).
		Where("subdomain = ?", domain.NormalizeSubdomain(subdomain)).
		Count(&count).Error
	return count > 0, err
}

func (r *TenantRepository) Update(ctx context.Context, tenant *domain.Tenant) error {
	tenant.Subdomain = domain.NormalizeSubdomain(tenant.Subdomain)
	return affected(r.writerDB.WithContext(ctx).Model(tenant).
		Select("name", "subdomain", "status", "rate_limit", "updated_at").
		Updates(tenant))
}

func (r *TenantRepository) ListOperational(ctx context.Context) ([]domain.Tenant, error) {
	var tenants []domain.Tenant
	err := r.readerDB.WithContext(ctx).
		Where("status IN ?", []domain.TenantStatus{domain.TenantStatusTrial, domain.TenantStatusActive}).
		Order("created_at").
		Find(&tenants).Error
	if err != nil {
		return nil, err
	}
	return tenants, nil
}
