package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/domain"
)

type LocationRepository struct {
	writerDB *gorm.DB
	readerDB *gorm.DB
}

func NewLocationRepository(writerDB, readerDB *gorm.DB) *LocationRepository {
	return &LocationRepository{
		writerDB: writerDB,
		readerDB: readerDB,
	}
}

func (r *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	return translateError(r.writerDB.WithContext(ctx).Omit("Client").Create(location).Error)
}

func (r *LocationRepository) GetByID(ctx context.Context, id string) (*domain.Location, error) {
	var location domain.Location
	if err := r.readerDB.WithContext(ctx).First(&location, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return &location, nil
}

func (r *LocationRepository) ListByClient(ctx context.Context, clientID string) ([]domain.Location, error) {
	var locations []domain.Location
	err := r.readerDB.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("is_primary DESC, created_at").
		Find(&locations).Error
	if err != nil {
		return nil, err
	}
	return locations, nil
}

func (r *LocationRepository) Delete(ctx context.Context, id string) error {
	return affected(r.writerDB.WithContext(ctx).Where("id = ?", id).Delete(&domain.Location{}))
}
