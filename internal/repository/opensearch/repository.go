package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/kingrain94/tenant-auth-api/internal/config"
	"github.com/kingrain94/tenant-auth-api/internal/domain"
	"github.com/kingrain94/tenant-auth-api/internal/repository"
	"github.com/kingrain94/tenant-auth-api/internal/tenancy"
)

const defaultPageSize = 50

type securityEventRepository struct {
	client *opensearch.Client
	config *config.OpenSearchConfig
}

func NewRepository(client *opensearch.Client, config *config.OpenSearchConfig) repository.SecurityEventRepository {
	return &securityEventRepository{
		client: client,
		config: config,
	}
}

func indexTime(e *domain.SecurityEvent) time.Time {
	if e.Timestamp.IsZero() {
		return time.Now()
	}
	return e.Timestamp
}

func (r *securityEventRepository) Index(ctx context.Context, event *domain.SecurityEvent) error {
	t := indexTime(event)
	if err := r.CreateIndex(ctx, event.TenantID, t); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      r.config.GetIndexName(event.TenantID, t),
		DocumentID: event.ID,
		Body:       bytes.NewReader(data),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("error indexing document: %s", res.String())
	}
	return nil
}

// BulkIndex groups events by target index and sends one bulk request per index
func (r *securityEventRepository) BulkIndex(ctx context.Context, events []domain.SecurityEvent) error {
	if len(events) == 0 {
		return nil
	}

	groups := make(map[string][]domain.SecurityEvent)
	for _, e := range events {
		name := r.config.GetIndexName(e.TenantID, indexTime(&e))
		groups[name] = append(groups[name], e)
	}

	for name, group := range groups {
		if err := r.bulkIndexGroup(ctx, name, group); err != nil {
			return fmt.Errorf("failed to bulk index group for index %s: %w", name, err)
		}
	}
	return nil
}

func (r *securityEventRepository) bulkIndexGroup(ctx context.Context, indexName string, events []domain.SecurityEvent) error {
	if err := r.CreateIndex(ctx, events[0].TenantID, indexTime(&events[0])); err != nil {
		return fmt.Errorf("failed to ensure index exists: %w", err)
	}

	var body bytes.Buffer
	enc := json.NewEncoder(&body)
	for _, e := range events {
		action := map[string]any{
			"index": map[string]any{
				"_index": indexName,
				"_id":    e.ID,
			},
		}
		if err := enc.Encode(action); err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
	}

	req := opensearchapi.BulkRequest{Body: &body}
	res, err := req.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to execute bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk request failed: %s", res.String())
	}
	return nil
}

// Search only ever reads the indices of the tenant bound to ctx
func (r *securityEventRepository) Search(ctx context.Context, filter domain.SecurityEventFilter) ([]domain.SecurityEvent, error) {
	tenantID, ok := tenancy.TenantID(ctx)
	if !ok {
		return nil, tenancy.ErrMissingTenantContext
	}

	queryJSON, err := json.Marshal(buildSearchQuery(filter))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{r.config.GetIndexPattern(tenantID)},
		Body:  bytes.NewReader(queryJSON),
	}

	res, err := req.Do(ctx, r.client)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return []domain.SecurityEvent{}, nil
		}
		return nil, fmt.Errorf("search request failed: %s", res.String())
	}

	var result struct {
		Hits struct {
			Hits []struct {
				Source domain.SecurityEvent `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	events := make([]domain.SecurityEvent, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		events = append(events, hit.Source)
	}
	return events, nil
}

func buildSearchQuery(filter domain.SecurityEventFilter) map[string]any {
	must := make([]map[string]any, 0)

	if filter.UserID != "" {
		must = append(must, termQuery("user_id", filter.UserID))
	}
	if filter.Type != "" {
		must = append(must, termQuery("type", string(filter.Type)))
	}
	if !filter.StartTime.IsZero() || !filter.EndTime.IsZero() {
		timeRange := make(map[string]any)
		if !filter.StartTime.IsZero() {
			timeRange["gte"] = filter.StartTime
		}
		if !filter.EndTime.IsZero() {
			timeRange["lte"] = filter.EndTime
		}
		must = append(must, map[string]any{"range": map[string]any{"timestamp": timeRange}})
	}

	size := filter.PageSize
	if size <= 0 {
		size = defaultPageSize
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": must,
			},
		},
		"from": (page - 1) * size,
		"size": size,
		"sort": []map[string]any{
			{"timestamp": map[string]any{"order": "desc"}},
		},
	}
}

func termQuery(field, value string) map[string]any {
	return map[string]any{
		"term": map[string]any{
			field: value,
		},
	}
}

const indexMapping = `{
	"mappings": {
		"properties": {
			"id": { "type": "keyword" },
			"tenant_id": { "type": "keyword" },
			"user_id": { "type": "keyword" },
			"type": { "type": "keyword" },
			"ip_address": { "type": "keyword" },
			"user_agent": { "type": "text" },
			"request_id": { "type": "keyword" },
			"message": { "type": "text" },
			"timestamp": { "type": "date" }
		}
	},
	"settings": {
		"index": {
			"number_of_shards": 1,
			"number_of_replicas": 1,
			"refresh_interval": "1s"
		}
	}
}`

func (r *securityEventRepository) CreateIndex(ctx context.Context, tenantID string, t time.Time) error {
	indexName := r.config.GetIndexName(tenantID, t)

	exists := opensearchapi.IndicesExistsRequest{Index: []string{indexName}}
	res, err := exists.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to check index existence: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	create := opensearchapi.IndicesCreateRequest{
		Index: indexName,
		Body:  strings.NewReader(indexMapping),
	}
	res, err = create.Do(ctx, r.client)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	// another writer may have created it between the two calls
	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("error creating index: %s", res.String())
	}
	return nil
}
