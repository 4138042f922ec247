package composite

import (
	opensearchclient "github.com/opensearch-project/opensearch-go/v2"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/repository/opensearch"
	"github.com/kingrain94/tenant-auth-api/internal/repository/postgres"
)

type compositeRepository struct {
	postgresRepo repository.PostgresRepository
	eventsRepo   repository.SecurityEventRepository
}

func NewCompositeRepository(dbConnections *config.DatabaseConnections, osClient *opensearchclient.Client, osConfig *config.OpenSearchConfig) repository.Repository {
	return New(postgres.NewPostgresRepository(dbConnections), opensearch.NewRepository(osClient, osConfig))
}

// New combines already built stores; used by binaries that do not talk to every backend
func New(postgresRepo repository.PostgresRepository, eventsRepo repository.SecurityEventRepository) repository.Repository {
	return &compositeRepository{
		postgresRepo: postgresRepo,
		eventsRepo:   eventsRepo,
	}
}

func (r *compositeRepository) Tenant() repository.TenantRepository {
	return r.postgresRepo.Tenant()
}

func (r *compositeRepository) User() repository.UserRepository {
	return r.postgresRepo.User()
}

func (r *compositeRepository) RefreshToken() repository.RefreshTokenRepository {
	return r.postgresRepo.RefreshToken()
}

func (r *compositeRepository) Client() repository.ClientRepository {
	return r.postgresRepo.Client()
}

func (r *compositeRepository) Location() repository.LocationRepository {
	return r.postgresRepo.Location()
}

func (r *compositeRepository) SecurityEvents() repository.SecurityEventRepository {
	return r.eventsRepo
}
