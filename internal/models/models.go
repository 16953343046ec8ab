// Package models defines the request and response shapes of the
// alertboard API.
package models

import "time"

// DefaultBlockReason is recorded when a block request omits the reason.
const DefaultBlockReason = "manual via UI"

// BlockRecord is one blocked source address. The IP doubles as the
// document ID in the block index, which makes repeated blocks of the same
// address an upsert: the reason and timestamp are refreshed in place.
type BlockRecord struct {
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	BlockedAt time.Time `json:"blocked_at"`
}

// BlockRequest is the body of POST /block-ip.
type BlockRequest struct {
	IP     string `json:"ip"`
	Reason string `json:"reason,omitempty"`
}

// BlockResponse acknowledges a block upsert with the document store's
// result string ("created" or "updated").
type BlockResponse struct {
	OK     bool   `json:"ok"`
	Result string `json:"result"`
}

// SearchResponse is the body of GET /alerts. Hits carry each document's
// source fields with the document ID merged in under "id"; beyond the
// handful of fields the query layer inspects, alert documents are an
// opaque bag of fields.
type SearchResponse struct {
	Total int                      `json:"total"`
	Hits  []map[string]interface{} `json:"hits"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}
