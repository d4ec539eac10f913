package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const quizEventsTable = "quiz_events"

var quizEventColumns = []string{
	"id", "sequence", "created_at", "session_id", "action", "source_name",
	"page_count", "question_count", "score", "error_message",
}

func (r *EventLog) AppendQuizEvent(ctx context.Context, data QuizEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return err
	}

	query, args := builder().Insert(quizEventsTable).
		Columns(quizEventColumns[1:]...).
		Values(
			seqNum, time.Now().UnixMilli(), data.SessionID, data.Action, data.SourceName,
			data.PageCount, data.QuestionCount, data.Score, data.ErrorMessage,
		).
		Query()
	if err := r.drv.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save quiz event: %w", err)
	}
	return nil
}

// QueryQuizEvents returns quiz lifecycle events, newest first.
func (r *EventLog) QueryQuizEvents(ctx context.Context, opts QueryOpts) ([]QuizEvent, error) {
	sel := builder().Select(quizEventColumns...).
		From(entsql.Table(quizEventsTable)).
		OrderBy(entsql.Desc("sequence"))
	if opts.SessionID != "" {
		sel.Where(entsql.EQ("session_id", opts.SessionID))
	}
	if opts.Limit > 0 {
		sel.Limit(opts.Limit)
	}

	query, args := sel.Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query quiz events: %w", err)
	}
	defer rows.Close()

	var events []QuizEvent
	for rows.Next() {
		var (
			e       QuizEvent
			created int64
		)
		if err := rows.Scan(
			&e.ID, &e.Sequence, &created, &e.SessionID, &e.Action, &e.SourceName,
			&e.PageCount, &e.QuestionCount, &e.Score, &e.ErrorMessage,
		); err != nil {
			return nil, fmt.Errorf("scan quiz event: %w", err)
		}
		e.Timestamp = time.UnixMilli(created)
		events = append(events, e)
	}
	return events, rows.Err()
}

// QuizStats summarizes all recorded quiz events.
func (r *EventLog) QuizStats(ctx context.Context) (*QuizStats, error) {
	query, args := builder().Select(
		"action",
		entsql.Count("*"),
		entsql.Count(entsql.Distinct("session_id")),
		entsql.Avg("score"),
		entsql.Max("score"),
	).
		From(entsql.Table(quizEventsTable)).
		GroupBy("action").
		Query()

	var rows entsql.Rows
	if err := r.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("query quiz stats: %w", err)
	}
	defer rows.Close()

	stats := &QuizStats{}
	for rows.Next() {
		var (
			action   string
			count    int
			sessions int
			avg      sql.NullFloat64
			best     sql.NullInt64
		)
		if err := rows.Scan(&action, &count, &sessions, &avg, &best); err != nil {
			return nil, fmt.Errorf("scan quiz stats: %w", err)
		}
		switch action {
		case QuizGenerated:
			stats.Generated = count
			stats.Sessions = sessions
		case QuizFailed:
			stats.Failed = count
		case QuizGraded:
			stats.Graded = count
			stats.AvgScore = avg.Float64
			stats.BestScore = int(best.Int64)
		}
	}
	return stats, rows.Err()
}
