package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/spasuite/sms-inbound/internal/model"
)

// ResponseLogRepository appends handled webhook messages to ClickHouse and
// aggregates them for the stats endpoint.
type ResponseLogRepository interface {
	Insert(ctx context.Context, e model.ResponseLogEntry) error
	Stats(ctx context.Context) (model.Stats, error)
}

type responseLogRepository struct {
	ch *sqlx.DB // ClickHouse connection
}

func NewResponseLogRepository(ch *sqlx.DB) ResponseLogRepository {
	return &responseLogRepository{ch: ch}
}

func (r *responseLogRepository) Insert(ctx context.Context, e model.ResponseLogEntry) error {
	const q = `
		INSERT INTO smsin.auto_responses
		    (message_id, from_phone, to_phone, body, outcome, reply, confidence, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, now())
	`
	_, err := r.ch.ExecContext(ctx, q,
		e.MessageID, e.FromPhone, e.ToPhone, e.Body, e.Outcome, e.Reply, e.Confidence,
	)
	return err
}

func (r *responseLogRepository) Stats(ctx context.Context) (model.Stats, error) {
	var s model.Stats

	row := r.ch.QueryRowxContext(ctx, `
		SELECT count(),
		       countIf(outcome = 'delegated'),
		       if(count() = 0, 0, avg(confidence))
		FROM smsin.auto_responses
	`)
	if err := row.Scan(&s.TotalProcessed, &s.ResponsesSent, &s.AverageConfidence); err != nil {
		return model.Stats{}, err
	}
	s.ResponsesBlocked = s.TotalProcessed - s.ResponsesSent

	if err := r.ch.SelectContext(ctx, &s.TopReasons, `
		SELECT outcome
		FROM smsin.auto_responses
		GROUP BY outcome
		ORDER BY count() DESC
		LIMIT 3
	`); err != nil {
		return model.Stats{}, err
	}
	return s, nil
}
