package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/opsglass/alertboard/internal/metrics"
	"github.com/opsglass/alertboard/internal/models"
)

// BlockIP upserts a block record keyed by the address itself. Blocking an
// already blocked address is idempotent and refreshes the reason and the
// blocked_at timestamp. The write waits for a refresh so an immediately
// following read sees the record.
func (s *Service) BlockIP(ctx context.Context, ip, reason string) (*models.BlockResponse, error) {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return nil, ErrInvalidIP
	}
	if reason == "" {
		reason = models.DefaultBlockReason
	}

	payload := map[string]interface{}{
		"doc": models.BlockRecord{
			IP:        ip,
			Reason:    reason,
			BlockedAt: time.Now().UTC(),
		},
		"doc_as_upsert": true,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("encode upsert: %w", err)
	}

	res, err := s.osClient.Client().Update(
		s.osClient.BlockIndex(),
		ip,
		&buf,
		s.osClient.Client().Update.WithContext(ctx),
		s.osClient.Client().Update.WithRefresh("wait_for"),
	)
	if err != nil {
		metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("update request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.UpstreamErrors.Inc()
		return nil, fmt.Errorf("update error: %s", res.String())
	}

	var updateResult struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&updateResult); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if updateResult.Result == "" {
		updateResult.Result = "updated"
	}

	return &models.BlockResponse{OK: true, Result: updateResult.Result}, nil
}

// ListBlocked returns every block record, newest first. A missing block
// index means nothing has been blocked yet and yields an empty list
// rather than an error.
func (s *Service) ListBlocked(ctx context.Context) ([]map[string]interface{}, error) {
	body := map[string]interface{}{
		"size": 500,
		"sort": []interface{}{
			map[string]interface{}{"blocked_at": map[string]interface{}{"order": "desc"}},
		},
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
	}

	var result searchResult
	var missing bool
	err := s.exec.Do(ctx, func(ctx context.Context) error {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode query: %w", err)
		}

		res, err := s.osClient.Client().Search(
			s.osClient.Client().Search.WithContext(ctx),
			s.osClient.Client().Search.WithIndex(s.osClient.BlockIndex()),
			s.osClient.Client().Search.WithBody(&buf),
		)
		if err != nil {
			return fmt.Errorf("search request: %w", err)
		}
		defer res.Body.Close()

		if res.IsError() {
			// The block index is created by the first write; an absent
			// index is an empty blocklist, not a failure.
			if isIndexNotFound(res.Body) {
				missing = true
				return nil
			}
			return fmt.Errorf("search error: %s", res.Status())
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
	if missing {
		return []map[string]interface{}{}, nil
	}

	records := make([]map[string]interface{}, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		doc := make(map[string]interface{}, len(hit.Source)+1)
		doc["id"] = hit.ID
		for k, v := range hit.Source {
			doc[k] = v
		}
		records = append(records, doc)
	}
	return records, nil
}

// isIndexNotFound reads an OpenSearch error body and reports whether it
// describes an index_not_found_exception.
func isIndexNotFound(body io.Reader) bool {
	var errBody struct {
		Error struct {
			Type string `json:"type"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&errBody); err != nil {
		return false
	}
	return errBody.Error.Type == "index_not_found_exception"
}
