package client

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opsglass/alertboard/internal/config"
)

// OpenSearchClient wraps the OpenSearch connection together with the two
// index names the dashboard works against.
type OpenSearchClient struct {
	client      *opensearch.Client
	alertsIndex string
	blockIndex  string
}

// NewOpenSearchClient connects to OpenSearch and verifies the connection
// with an Info ping.
func NewOpenSearchClient(cfg config.OpenSearchConfig) (*OpenSearchClient, error) {
	httpClient := &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: cfg.Insecure,
			},
		},
	}

	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: httpClient.Transport,
	}

	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	info, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to ping opensearch: %w", err)
	}
	defer info.Body.Close()

	if info.IsError() {
		return nil, fmt.Errorf("opensearch returned error: %s", info.Status())
	}

	return &OpenSearchClient{
		client:      client,
		alertsIndex: cfg.AlertsIndex,
		blockIndex:  cfg.BlockIndex,
	}, nil
}

// NewOpenSearchClientNoPing builds a client without the startup ping.
// Used by tests that point the client at an httptest server.
func NewOpenSearchClientNoPing(cfg config.OpenSearchConfig) (*OpenSearchClient, error) {
	osCfg := opensearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	client, err := opensearch.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}
	return &OpenSearchClient{
		client:      client,
		alertsIndex: cfg.AlertsIndex,
		blockIndex:  cfg.BlockIndex,
	}, nil
}

func (c *OpenSearchClient) Client() *opensearch.Client {
	return c.client
}

func (c *OpenSearchClient) AlertsIndex() string {
	return c.alertsIndex
}

func (c *OpenSearchClient) BlockIndex() string {
	return c.blockIndex
}
