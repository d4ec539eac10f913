package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

const llmEventsTable = "llm_request_events"

var llmEventColumns = []string{
	"id", "sequence", "created_at", "session_id", "provider", "model", "purpose",
	"input_tokens", "output_tokens", "latency_ms", "success", "error_message",
	"request_body", "response_body",
}

// EventLog implements EventRepo and the read-side queries used by the
// CLI. Statements are built with ent's SQL builder.
type EventLog struct {
	drv *entsql.Driver
	seq *sequenceCounter
}

var _ EventRepo = (*EventLog)(nil)

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

func (r *EventLog) AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder().Insert(llmEventsTable).
		Columns(llmEventColumns[1:]...).
		Values(
			seqNum, time.Now().UnixMilli(), data.SessionID, data.Provider, data.Model, data.Purpose,
			data.InputTokens, data.OutputTokens, data.LatencyMs, data.Success, data.ErrorMessage,
			data.RequestBody, data.ResponseBody,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

// QueryLLMEvents returns recorded model calls, newest first.
func (r *EventLog) QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error) {
	sel := builder().Select(llmEventColumns...).
		From(entsql.Table(llmEventsTable)).
		OrderBy(entsql.Desc("sequence"))
	if opts.Purpose != "" {
		sel.Where(entsql.EQ("purpose", opts.Purpose))
	}
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query LLM events: %w", err)
	}
	defer rows.Close()

	var events []LLMEvent
	for rows.Next() {
		e, err := scanLLMEvent(&rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetLLMEvent returns one event by id, or nil if it does not exist.
func (r *EventLog) GetLLMEvent(ctx context.Context, id int) (*LLMEvent, error) {
	query, args := builder().Select(llmEventColumns...).
		From(entsql.Table(llmEventsTable)).
		Where(entsql.EQ("id", id)).
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("get LLM event: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return scanLLMEvent(&rows)
}

func scanLLMEvent(rows *entsql.Rows) (*LLMEvent, error) {
	var (
		e       LLMEvent
		created int64
	)
	err := rows.Scan(
		&e.ID, &e.Sequence, &created, &e.SessionID, &e.Provider, &e.Model, &e.Purpose,
		&e.InputTokens, &e.OutputTokens, &e.LatencyMs, &e.Success, &e.ErrorMessage,
		&e.RequestBody, &e.ResponseBody,
	)
	if err != nil {
		return nil, fmt.Errorf("scan LLM event: %w", err)
	}
	e.Timestamp = time.UnixMilli(created)
	return &e, nil
}

// LLMUsageByPurpose aggregates token usage per purpose.
func (r *EventLog) LLMUsageByPurpose(ctx context.Context) ([]PurposeUsage, error) {
	query, args := builder().Select(
		"purpose",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
		entsql.Avg("latency_ms"),
	).
		From(entsql.Table(llmEventsTable)).
		GroupBy("purpose").
		OrderBy("purpose").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query usage by purpose: %w", err)
	}
	defer rows.Close()

	var out []PurposeUsage
	for rows.Next() {
		var (
			u   PurposeUsage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&u.Purpose, &u.Calls, &u.InputTokens, &u.OutputTokens, &avg); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		u.AvgLatencyMs = int64(avg.Float64)
		out = append(out, u)
	}
	return out, rows.Err()
}

// LLMUsageByModel aggregates token usage per served model, for cost
// estimates.
func (r *EventLog) LLMUsageByModel(ctx context.Context) ([]ModelUsage, error) {
	query, args := builder().Select(
		"model",
		entsql.Count("*"),
		entsql.Sum("input_tokens"),
		entsql.Sum("output_tokens"),
	).
		From(entsql.Table(llmEventsTable)).
		GroupBy("model").
		OrderBy("model").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query usage by model: %w", err)
	}
	defer rows.Close()

	var out []ModelUsage
	for rows.Next() {
		var u ModelUsage
		if err := rows.Scan(&u.Model, &u.Calls, &u.InputTokens, &u.OutputTokens); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
