package entity

import (
	"context"
	"strings"

	"github.com/dmitrymomot/mvc/pkg/db"
	"github.com/dmitrymomot/mvc/pkg/logger"
	"github.com/dmitrymomot/mvc/pkg/query"
)

// LogRecord is a row of the Logs table: one flushed request log.
type LogRecord struct {
	RequestID string
	IPv4      string
	Level     string
	Body      string
	ID        int64
	UserID    int64
	CreatedAt int64
}

// Logs is the Logs table.
type Logs struct {
	Table
}

// NewLogs binds the Logs table to gw.
func NewLogs(gw *db.Gateway) Logs {
	return Logs{Table: NewTable(gw, "Logs")}
}

// Create inserts a record and returns its id.
func (l Logs) Create(ctx context.Context, rec LogRecord) (int64, error) {
	return l.Insert(query.Values{
		{Column: "request_id", Value: rec.RequestID},
		{Column: "ipv4", Value: rec.IPv4},
		{Column: "Users_id", Value: rec.UserID},
		{Column: "level", Value: rec.Level},
		{Column: "body", Value: rec.Body},
		{Column: "created_at", Value: rec.CreatedAt},
	}).ExecuteInsertID(ctx)
}

// Recent returns the newest records first.
func (l Logs) Recent(ctx context.Context, limit int) ([]LogRecord, error) {
	rows, err := l.Select().OrderBy("id", query.Desc).Limit(0, limit).ExecuteFetchAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]LogRecord, len(rows))
	for i, row := range rows {
		out[i] = LogRecord{
			ID:        row.Int64("id"),
			RequestID: row.String("request_id"),
			IPv4:      row.String("ipv4"),
			UserID:    row.Int64("Users_id"),
			Level:     row.String("level"),
			Body:      row.String("body"),
			CreatedAt: row.Int64("created_at"),
		}
	}
	return out, nil
}

// LogStore persists flushed request logs into the Logs table.
// It implements logger.ReportStore. Each report is written through its own
// short-lived gateway, since the request's gateways are closed by then.
type LogStore struct {
	database *db.Database
}

// NewLogStore returns a store writing to d.
func NewLogStore(d *db.Database) *LogStore {
	return &LogStore{database: d}
}

// SaveReport writes r as one Logs row.
func (s *LogStore) SaveReport(ctx context.Context, r logger.Report) error {
	reg := db.NewRegistry(map[string]*db.Database{s.database.Name(): s.database})
	defer reg.Close(ctx)

	_, err := NewLogs(reg.Gateway(s.database.Name())).Create(ctx, LogRecord{
		RequestID: r.RequestID,
		IPv4:      r.ClientIP,
		UserID:    r.UserID,
		Level:     r.Level.String(),
		Body:      strings.Join(r.Lines(), "\n"),
		CreatedAt: r.Time.Unix(),
	})
	return err
}
