package postgres

import (
	"gorm.io/gorm"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
)

type postgresRepository struct {
	tenantRepo       repository.TenantRepository
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	clientRepo       repository.ClientRepository
	locationRepo     repository.LocationRepository
}

func NewPostgresRepository(dbConnections *config.DatabaseConnections) repository.PostgresRepository {
	return newPostgresRepository(dbConnections.Writer, dbConnections.Reader)
}

func newPostgresRepository(writer, reader *gorm.DB) *postgresRepository {
	return &postgresRepository{
		tenantRepo:       NewTenantRepository(writer, reader),
		userRepo:         NewUserRepository(writer, reader),
		refreshTokenRepo: NewRefreshTokenRepository(writer, reader),
		clientRepo:       NewClientRepository(writer, reader),
		locationRepo:     NewLocationRepository(writer, reader),
	}
}

func (r *postgresRepository) Tenant() repository.TenantRepository {
	return r.tenantRepo
}

func (r *postgresRepository) User() repository.UserRepository {
	return r.userRepo
}

func (r *postgresRepository) RefreshToken() repository.RefreshTokenRepository {
	return r.refreshTokenRepo
}

func (r *postgresRepository) Client() repository.ClientRepository {
	return r.clientRepo
}

func (r *postgresRepository) Location() repository.LocationRepository {
	return r.locationRepo
}
