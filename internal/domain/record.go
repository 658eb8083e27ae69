package domain

import (
	"time"

	"github.com/google/uuid"
)

// InsightSource tells the client whether a response came from a stored record
// or from a fresh synthesis.
type InsightSource string

const (
	SourceCache InsightSource = "cache"
	SourceAPI   InsightSource = "api"
)

// InsightRecord is one persisted insight for an owner.
type InsightRecord struct {
	ID           uuid.UUID       `json:"id"`
	OwnerID      string          `json:"userId"`
	BusinessName string          `json:"businessName"`
	Insight      BusinessInsight `json:"insights"`
	CreatedAt    time.Time       `json:"createdAt"`
}

type InsightResult struct {
	Source InsightSource    `json:"source"`
	Data   *BusinessInsight `json:"data"`
}

// HistoryFilter narrows a history listing. Empty fields match everything.
type HistoryFilter struct {
	OwnerID      string
	BusinessName string
	Limit        int
}
