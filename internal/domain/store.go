package domain

import (
	"context"
	"io"
	"time"
)

// RunReport summarizes one scan run for persistence: the stage counts that
// make silent data loss observable.
type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	TotalPairs int
	Matched    int
	Eligible   int
	Scored     int
}

// ResultStore persists scan runs and their ranked output.
type ResultStore interface {
	InsertRun(ctx context.Context, report RunReport) error
	InsertScoredBatch(ctx context.Context, runID string, items []ScoredItem) error
	ListTopRecent(ctx context.Context, limit int) ([]ScoredItem, error)
}

// BlobWriter uploads archive objects to blob storage.
type BlobWriter interface {
	Put(ctx context.Context, path string, data io.Reader, contentType string) error
}
