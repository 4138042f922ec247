package config

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
)

type OpenSearchConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	InsecureSkipVerify bool
}

func DefaultOpenSearchConfig() *OpenSearchConfig {
	return &OpenSearchConfig{
		Host:               getEnvWithDefault("OPENSEARCH_HOST", "localhost"),
		Port:               getEnvWithDefault("OPENSEARCH_PORT", "9200"),
		Username:           getEnvWithDefault("OPENSEARCH_USERNAME", ""),
		Password:           getEnvWithDefault("OPENSEARCH_PASSWORD", ""),
		InsecureSkipVerify: getEnvBoolWithDefault("OPENSEARCH_INSECURE_SKIP_VERIFY", false),
	}
}

func (c *OpenSearchConfig) GetClient() (*opensearch.Client, error) {
	config := opensearch.Config{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: c.InsecureSkipVerify,
			},
		},
		Addresses: []string{
			fmt.Sprintf("http://%s:%s", c.Host, c.Port),
		},
	}

	if c.Username != "" && c.Password != "" {
		config.Username = c.Username
		config.Password = c.Password
	}

	return opensearch.NewClient(config)
}

// GetIndexName returns the daily security event index of a tenant
// Format: security_events_<tenant_id>_YYYY_MM_DD
func (c *OpenSearchConfig) GetIndexName(tenantID string, t time.Time) string {
	return fmt.Sprintf("security_events_%s_%s", tenantID, t.UTC().Format("2006_01_02"))
}

// GetIndexPattern returns a pattern matching all security event indices of a tenant
func (c *OpenSearchConfig) GetIndexPattern(tenantID string) string {
	return fmt.Sprintf("security_events_%s_*", tenantID)
}
