package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type ClientRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewClientRepository(writerDB, readerDB *gorm.DB) *ClientRepository {
	return &ClientRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return translateError(r.writerDB.WithContext(ctx).Create(client).Error)
}

func (r *ClientRepository) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	var client domain.Client
	if err := r.readerDB.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &client, nil
}

func (r *ClientRepository) List(ctx context.Context, limit, offset int) ([]domain.Client, int64, error) {
	db := r.readerDB.WithContext(ctx).Model(&domain.Client{}).Session(&gorm.Session{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var clients []domain.Client
	if err := paginate(db, limit, offset).Order("company_name").Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}

func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return affected(r.writerDB.WithContext(ctx).Model(client).
		Select("company_name", "contact_name", "email", "phone",
			"billing_address_line1", "billing_address_line2", "billing_city", "billing_state",
			"billing_postal_code", "billing_country", "is_active", "updated_at").
		Updates(client))
}

func (r *ClientRepository) Delete(ctx context.Context, id string) error {
	return affected(r.writerDB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Client{}))
}
