package opensearch

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

type fakeCluster struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeCluster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
	f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	f.handler(w, r)
}

func newTestRepository(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*securityEventRepository, *fakeCluster) {
	t.Helper()
	cluster := &fakeCluster{handler: handler}
	srv := httptest.NewServer(cluster)
	t.Cleanup(srv.Close)

	client, err := opensearch.NewClient(opensearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	repo := NewRepository(client, &config.OpenSearchConfig{}).(*securityEventRepository)
	return repo, cluster
}

func TestSearch_RequiresTenant(t *testing.T) {
	repo, cluster := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {})

	_, err := repo.Search(context.Background(), domain.SecurityEventFilter{})

	assert.ErrorIs(t, err, tenancy.ErrMissingTenantContext)
	assert.Empty(t, cluster.requests)
}

func TestSearch_UsesBoundTenantIndices(t *testing.T) {
	repo, cluster := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"hits":{"hits":[{"_source":{"id":"e1","tenant_id":"tenant-1","type":"LOGIN","message":"ok"}}]}}`))
	})
	ctx := tenancy.WithTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})

	// a filter naming another tenant does not widen the search
	events, err := repo.Search(ctx, domain.SecurityEventFilter{TenantID: "tenant-2", Type: domain.SecurityEventLogin})

	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "e1", events[0].ID)
	require.Len(t, cluster.requests, 1)
	assert.Equal(t, "/security_events_tenant-1_*/_search", cluster.requests[0].path)
	assert.Contains(t, cluster.requests[0].body, `"type":"LOGIN"`)
}

func TestSearch_MissingIndexIsEmpty(t *testing.T) {
	repo, _ := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"type":"index_not_found_exception"}}`))
	})
	ctx := tenancy.WithTenant(context.Background(), &domain.Tenant{ID: "tenant-1"})

	events, err := repo.Search(ctx, domain.SecurityEventFilter{})

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestBulkIndex_GroupsByDailyIndex(t *testing.T) {
	repo, cluster := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, _ = w.Write([]byte(`{"errors":false,"items":[]}`))
	})

	day := time.Date(2025, 5, 4, 10, 0, 0, 0, time.UTC)
	events := []domain.SecurityEvent{
		{ID: "a", TenantID: "t1", Type: domain.SecurityEventLogin, Timestamp: day},
		{ID: "b", TenantID: "t1", Type: domain.SecurityEventLogout, Timestamp: day.Add(time.Hour)},
		{ID: "c", TenantID: "t2", Type: domain.SecurityEventLogin, Timestamp: day},
	}

	require.NoError(t, repo.BulkIndex(context.Background(), events))

	var bulkBodies []string
	for _, req := range cluster.requests {
		if req.path == "/_bulk" {
			bulkBodies = append(bulkBodies, req.body)
		}
	}
	require.Len(t, bulkBodies, 2)

	joined := strings.Join(bulkBodies, "")
	assert.Contains(t, joined, `"_index":"security_events_t1_2025_05_04"`)
	assert.Contains(t, joined, `"_index":"security_events_t2_2025_05_04"`)

	// every action line is followed by its document
	for _, body := range bulkBodies {
		lines := strings.Split(strings.TrimSpace(body), "\n")
		assert.Equal(t, 0, len(lines)%2)
		for i := 1; i < len(lines); i += 2 {
			var doc domain.SecurityEvent
			require.NoError(t, json.Unmarshal([]byte(lines[i]), &doc))
			assert.NotEmpty(t, doc.ID)
		}
	}
}

func TestCreateIndex_SkipsExisting(t *testing.T) {
	repo, cluster := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	require.NoError(t, repo.CreateIndex(context.Background(), "t1", time.Now()))
	require.Len(t, cluster.requests, 1)
	assert.Equal(t, http.MethodHead, cluster.requests[0].method)
}

func TestCreateIndex_CreatesMissing(t *testing.T) {
	repo, cluster := newTestRepository(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	})

	require.NoError(t, repo.CreateIndex(context.Background(), "t1", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)))
	require.Len(t, cluster.requests, 2)
	assert.Equal(t, http.MethodPut, cluster.requests[1].method)
	assert.Equal(t, "/security_events_t1_2025_01_02", cluster.requests[1].path)
	assert.Contains(t, cluster.requests[1].body, `"tenant_id": { "type": "keyword" }`)
}

func TestBuildSearchQuery_Pagination(t *testing.T) {
	q := buildSearchQuery(domain.SecurityEventFilter{Page: 3, PageSize: 20})
	assert.Equal(t, 40, q["from"])
	assert.Equal(t, 20, q["size"])

	q = buildSearchQuery(domain.SecurityEventFilter{})
	assert.Equal(t, 0, q["from"])
	assert.Equal(t, defaultPageSize, q["size"])
}
