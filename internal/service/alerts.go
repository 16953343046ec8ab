package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opsglass/alertboard/internal/metrics"
	"github.com/opsglass/alertboard/internal/models"
	"github.com/opsglass/alertboard/internal/query"
)

// searchResult mirrors the slice of the OpenSearch response the dashboard
// cares about.
type searchResult struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string                 `json:"_id"`
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// SearchAlerts builds the query for the given parameters and executes it
// against the alerts index, retrying transient failures per the service's
// retry policy. Hits are shaped as the document source with the document
// ID merged in.
func (s *Service) SearchAlerts(ctx context.Context, p query.Params) (*models.SearchResponse, error) {
	start := time.Now()
	body := query.Build(p)

	var result searchResult
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode query: %w", err)
		}

		res, err := s.osClient.Client().Search(
			s.osClient.Client().Search.WithContext(ctx),
			s.osClient.Client().Search.WithIndex(s.osClient.AlertsIndex()),
			s.osClient.Client().Search.WithBody(&buf),
		)
		if err != nil {
			return fmt.Errorf("search request: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			return fmt.Errorf("search error: %s", res.String())
		}

		result = searchResult{}
		if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		metrics.UpstreamErrors.Inc()
		return nil, err
	}

	metrics.SearchDuration.Observe(time.Since(start).Seconds())

	hits := make([]map[string]interface{}, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := make(map[string]interface{}, len(hit.Source)+1)
		doc["id"] = hit.ID
		for k, v := range hit.Source {
			doc[k] = v
		}
		hits = append(hits, doc)
	}

	return &models.SearchResponse{
		Total: result.Hits.Total.Value,
		Hits:  hits,
	}, nil
}
