package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsglass/alertboard/internal/client"
	"github.com/opsglass/alertboard/internal/config"
	"github.com/opsglass/alertboard/internal/models"
	"github.com/opsglass/alertboard/internal/query"
	"github.com/opsglass/alertboard/internal/retry"
	"github.com/opsglass/alertboard/internal/stream"
)

func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	osc, err := client.NewOpenSearchClientNoPing(config.OpenSearchConfig{
		URL:         srv.URL,
		AlertsIndex: "suricata-logs",
		BlockIndex:  "blocked-ips",
	})
	require.NoError(t, err)

	return New("test", osc, retry.New(3, time.Millisecond), stream.NewBroadcaster(16))
}

func writeSearchResponse(w http.ResponseWriter, total int, hits []map[string]interface{}) {
	out := map[string]interface{}{
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": total},
			"hits":  hits,
		},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(out)
}

func TestSearchAlerts_ShapesHits(t *testing.T) {
	var gotBody map[string]interface{}
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/suricata-logs/_search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeSearchResponse(w, 2, []map[string]interface{}{
			{"_id": "a1", "_source": map[string]interface{}{"src_ip": "10.0.0.1", "proto": "TCP"}},
			{"_id": "a2", "_source": map[string]interface{}{"src_ip": "10.0.0.2"}},
		})
	}))

	resp, err := svc.SearchAlerts(context.Background(), query.Params{Term: "tcp", Size: 50})
	require.NoError(t, err)

	assert.Equal(t, 2, resp.Total)
	require.Len(t, resp.Hits, 2)
	assert.Equal(t, "a1", resp.Hits[0]["id"])
	assert.Equal(t, "10.0.0.1", resp.Hits[0]["src_ip"])
	assert.Equal(t, "a2", resp.Hits[1]["id"])

	// The request body carries the built query with pagination defaults.
	assert.Equal(t, true, gotBody["track_total_hits"])
	assert.Equal(t, float64(50), gotBody["size"])
	assert.Equal(t, float64(0), gotBody["from"])
}

func TestSearchAlerts_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeSearchResponse(w, 0, nil)
	}))

	resp, err := svc.SearchAlerts(context.Background(), query.Params{Size: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Total)
	assert.Equal(t, int32(3), calls.Load())
}

func TestSearchAlerts_SurfacesLastErrorAfterExhaustion(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := svc.SearchAlerts(context.Background(), query.Params{Size: 10})
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "retry budget is bounded")
	assert.Contains(t, err.Error(), "search error")
}

func TestBlockIP_UpsertsWithDefaults(t *testing.T) {
	before := time.Now().UTC()

	var gotPath, gotRefresh string
	var gotPayload struct {
		Doc         models.BlockRecord `json:"doc"`
		DocAsUpsert bool               `json:"doc_as_upsert"`
	}
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotRefresh = r.URL.Query().Get("refresh")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"result": "created"})
	}))

	resp, err := svc.BlockIP(context.Background(), "10.0.0.5", "")
	require.NoError(t, err)

	assert.True(t, resp.OK)
	assert.Equal(t, "created", resp.Result)
	assert.Equal(t, "/blocked-ips/_update/10.0.0.5", gotPath)
	assert.Equal(t, "wait_for", gotRefresh)
	assert.True(t, gotPayload.DocAsUpsert)
	assert.Equal(t, "10.0.0.5", gotPayload.Doc.IP)
	assert.Equal(t, models.DefaultBlockReason, gotPayload.Doc.Reason)
	assert.False(t, gotPayload.Doc.BlockedAt.Before(before), "blocked_at must not predate the call")
}

func TestBlockIP_KeepsCallerReason(t *testing.T) {
	var gotPayload struct {
		Doc models.BlockRecord `json:"doc"`
	}
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(map[string]string{"result": "updated"})
	}))

	resp, err := svc.BlockIP(context.Background(), "10.0.0.5", "port scan")
	require.NoError(t, err)
	assert.Equal(t, "updated", resp.Result)
	assert.Equal(t, "port scan", gotPayload.Doc.Reason)
}

func TestBlockIP_RejectsMissingIP(t *testing.T) {
	called := false
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	for _, ip := range []string{"", "   "} {
		_, err := svc.BlockIP(context.Background(), ip, "whatever")
		assert.ErrorIs(t, err, ErrInvalidIP)
	}
	assert.False(t, called, "validation failures must not reach the document store")
}

func TestListBlocked_SortsNewestFirstQuery(t *testing.T) {
	var gotBody map[string]interface{}
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/blocked-ips/_search") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		writeSearchResponse(w, 1, []map[string]interface{}{
			{"_id": "10.0.0.5", "_source": map[string]interface{}{
				"ip": "10.0.0.5", "reason": "port scan", "blocked_at": "2026-01-02T03:04:05Z",
			}},
		})
	}))

	records, err := svc.ListBlocked(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "10.0.0.5", records[0]["ip"])
	assert.Equal(t, "port scan", records[0]["reason"])

	sort := gotBody["sort"].([]interface{})[0].(map[string]interface{})
	order := sort["blocked_at"].(map[string]interface{})["order"]
	assert.Equal(t, "desc", order)
}

func TestListBlocked_MissingIndexIsEmptyNotError(t *testing.T) {
	var calls atomic.Int32
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{
				"type":   "index_not_found_exception",
				"reason": "no such index [blocked-ips]",
			},
			"status": 404,
		})
	}))

	records, err := svc.ListBlocked(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, int32(1), calls.Load(), "a missing index is terminal, not retried")
}

func TestIngestAlert_BroadcastsToSubscribers(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("ingest must not touch the document store")
	}))
	sub := svc.Broadcaster().Subscribe()
	defer svc.Broadcaster().Unsubscribe(sub)

	raw := []byte("{\n  \"event_type\": \"alert\",\n  \"src_ip\": \"10.0.0.9\"\n}")
	require.NoError(t, svc.IngestAlert(context.Background(), raw))

	select {
	case ev := <-sub.C:
		assert.JSONEq(t, `{"event_type":"alert","src_ip":"10.0.0.9"}`, string(ev))
		assert.NotContains(t, string(ev), "\n", "stream payloads must be single-line")
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
}

func TestIngestAlert_RejectsNonAlerts(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	sub := svc.Broadcaster().Subscribe()
	defer svc.Broadcaster().Unsubscribe(sub)

	for _, raw := range []string{
		`{"event_type":"flow"}`,
		`{"event_type":42}`,
		`{}`,
		`not json`,
	} {
		err := svc.IngestAlert(context.Background(), []byte(raw))
		assert.ErrorIs(t, err, ErrNotAlert, "payload %q", raw)
	}

	select {
	case ev := <-sub.C:
		t.Fatalf("rejected event %q reached the stream", ev)
	default:
	}
}

func TestHealth(t *testing.T) {
	svc := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	h := svc.Health(context.Background())
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "test", h.Version)
	assert.GreaterOrEqual(t, h.UptimeSeconds, int64(0))
}
