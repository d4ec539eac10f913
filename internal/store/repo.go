package store

import (
	"context"
	"encoding/json"
	"time"
)

// QueryOpts filters and pages event queries.
type QueryOpts struct {
	Limit     int // 0 = unlimited
	Purpose   string
	SessionID string
}

// LLMRequestEventData is what gets recorded for one model call.
type LLMRequestEventData struct {
	SessionID    string
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded model call.
type LLMEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates model calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// ModelUsage aggregates model calls by the model that served them.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// Quiz lifecycle actions.
const (
	QuizGenerated = "generated"
	QuizFailed    = "failed"
	QuizGraded    = "graded"
	QuizReset     = "reset"
)

// QuizEventData describes one quiz lifecycle event.
type QuizEventData struct {
	SessionID     string
	Action        string
	SourceName    string
	PageCount     int
	QuestionCount int
	Score         int
	ErrorMessage  string
}

// QuizEvent is a recorded quiz lifecycle event.
type QuizEvent struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	QuizEventData
}

// QuizStats summarizes the quiz event log.
type QuizStats struct {
	Sessions  int
	Generated int
	Failed    int
	Graded    int
	AvgScore  float64
	BestScore int
}

// EventRepo is the append side of the event log.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
	AppendQuizEvent(ctx context.Context, data QuizEventData) error
}

// Snapshot is a serialized quiz session. The payload format belongs to
// the session package.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	SessionID string
	Data      json.RawMessage
}
