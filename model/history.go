package model

import (
	"encoding/json"
	"time"
)

// HistoryEntry records an applied action. Entries are persisted but nothing
// replays them yet.
type HistoryEntry struct {
	ID        string          `json:"id"`
	Action    string          `json:"action"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}
