package types

import "time"

// AccessEvent is one durable record of a card-based access attempt.
// UserName is free text reported by the reader and does not have to match
// a registered identity. The store assigns ID and Timestamp on insert.
type AccessEvent struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	CardUID   string    `json:"card_uid"`
	Action    string    `json:"action"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// IngestRequest is the payload a field device posts for each card read.
type IngestRequest struct {
	User   string `json:"user"`
	UID    string `json:"uid"`
	Action string `json:"action"`
	Status string `json:"status"`
}

type IngestResponse struct {
	Message string      `json:"message"`
	Log     AccessEvent `json:"log"`
}

type DashboardStats struct {
	TotalEntries int64 `json:"totalEntries"`
	UniqueUsers  int64 `json:"uniqueUsers"`
	TodayEntries int64 `json:"todayEntries"`
}
