package quizgen

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/pdfquiz/pdfquiz/internal/llm"
)

func validSetJSON(t *testing.T) json.RawMessage {
	t.Helper()
	data, err := os.ReadFile("testdata/question_set.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func quietLogger() *logrus.Logger {
	log, _ := test.NewNullLogger()
	return log
}

func wantKind(t *testing.T, err error, kind ErrorKind) *GenerationError {
	t.Helper()
	var gerr *GenerationError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected *GenerationError, got %T: %v", err, err)
	}
	if gerr.Kind != kind {
		t.Fatalf("expected kind %s, got %s (%v)", kind, gerr.Kind, gerr.Err)
	}
	return gerr
}

func TestGenerate_Success(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{
		Content: validSetJSON(t),
		Usage:   llm.Usage{InputTokens: 1200, OutputTokens: 900, TotalTokens: 2100},
	})
	svc := New(mock, DefaultConfig(), quietLogger())

	res, err := svc.Generate(context.Background(), []string{"p1", "p2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mc, sa := res.Set.Counts()
	if mc != 8 || sa != 2 {
		t.Fatalf("expected 8 MC + 2 SA, got %d + %d", mc, sa)
	}
	for i, q := range res.Set.Questions {
		if q.Kind != KindMultipleChoice {
			continue
		}
		if len(q.Options) != 4 {
			t.Errorf("question %d: expected 4 options, got %d", i, len(q.Options))
		}
		if OptionIndex(q.Answer) < 0 {
			t.Errorf("question %d: answer %q not in A-D", i, q.Answer)
		}
	}
	if res.Usage != (Usage{PromptTokens: 1200, CompletionTokens: 900, TotalTokens: 2100}) {
		t.Errorf("unexpected usage: %+v", res.Usage)
	}
	if res.Model != "mock" {
		t.Errorf("expected model mock, got %q", res.Model)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validSetJSON(t)})
	svc := New(mock, DefaultConfig(), quietLogger())

	pages := []string{
		"--- Page 1 START ---\n첫 페이지\n--- Page 1 END ---",
		"--- Page 2 START ---\n둘째 페이지\n--- Page 2 END ---",
	}
	if _, err := svc.Generate(context.Background(), pages); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req, ok := mock.LastRequest()
	if !ok {
		t.Fatal("no request recorded")
	}
	if !req.JSONMode {
		t.Error("expected JSON mode")
	}
	if req.Schema != nil {
		t.Error("schema should be checked locally, not sent")
	}
	if req.MaxTokens != 8000 || req.Temperature != 0.5 {
		t.Errorf("unexpected limits: max_tokens=%d temperature=%v", req.MaxTokens, req.Temperature)
	}
	if req.System != "" || len(req.Messages) != 1 || req.Messages[0].Role != llm.RoleUser {
		t.Fatalf("expected a single user message, got %+v", req.Messages)
	}
	prompt := req.Messages[0].Content
	if !strings.Contains(prompt, pages[0]+"\n\n"+pages[1]) {
		t.Error("pages not joined with a blank line")
	}
	for _, want := range []string{"객관식(4지선다) 문제: 8개", "주관식(단답형) 문제: 2개", `"questions"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestGenerate_EmptyTexts(t *testing.T) {
	for _, texts := range [][]string{nil, {}} {
		mock := llm.NewMockProvider()
		svc := New(mock, DefaultConfig(), quietLogger())

		_, err := svc.Generate(context.Background(), texts)
		gerr := wantKind(t, err, ValidationError)
		if gerr.HTTPStatus() != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", gerr.HTTPStatus())
		}
		if mock.CallCount() != 0 {
			t.Errorf("expected no upstream call, got %d", mock.CallCount())
		}
	}
}

func TestGenerate_NonJSONOutput(t *testing.T) {
	raw := "죄송합니다. 문제를 만들 수 없습니다."
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(raw)})
	log, hook := test.NewNullLogger()
	svc := New(mock, DefaultConfig(), log)

	_, err := svc.Generate(context.Background(), []string{"text"})
	gerr := wantKind(t, err, InvalidModelOutput)
	if gerr.HTTPStatus() != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", gerr.HTTPStatus())
	}
	if strings.Contains(gerr.UserMessage(), raw) {
		t.Error("user message must not contain the raw output")
	}
	if mock.CallCount() != 1 {
		t.Errorf("invalid output must not be retried, got %d calls", mock.CallCount())
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Fatalf("expected an error log entry, got %+v", entry)
	}
	if entry.Data["raw"] != raw {
		t.Errorf("raw output not logged: %v", entry.Data["raw"])
	}
}

func TestGenerate_EmptyOutput(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage("")})
	svc := New(mock, DefaultConfig(), quietLogger())

	_, err := svc.Generate(context.Background(), []string{"text"})
	wantKind(t, err, InvalidModelOutput)
}

func TestGenerate_ContractViolation(t *testing.T) {
	short := `{"questions":[{"type":"SHORT_ANSWER","question":"q","options":[],"answer":"a","explanation":"e"}]}`

	strict := New(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(short)}), DefaultConfig(), quietLogger())
	_, err := strict.Generate(context.Background(), []string{"text"})
	wantKind(t, err, InvalidModelOutput)

	cfg := DefaultConfig()
	cfg.Strict = false
	lenient := New(llm.NewMockProvider(llm.MockResponse{Content: json.RawMessage(short)}), cfg, quietLogger())
	res, err := lenient.Generate(context.Background(), []string{"text"})
	if err != nil {
		t.Fatalf("non-strict mode should pass the set through: %v", err)
	}
	if len(res.Set.Questions) != 1 {
		t.Errorf("expected 1 question, got %d", len(res.Set.Questions))
	}
}

func TestGenerate_UpstreamFailures(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"unavailable", &llm.ErrProviderUnavailable{Err: errors.New("401 unauthorized")}, UpstreamFailure},
		{"rate limit", &llm.ErrRateLimit{Err: errors.New("429")}, UpstreamFailure},
		{"deadline", context.DeadlineExceeded, UpstreamFailure},
		{"invalid", &llm.ErrInvalidResponse{Content: json.RawMessage("{"), Err: errors.New("bad")}, InvalidModelOutput},
		{"truncated", &llm.ErrMaxTokensExceeded{Content: json.RawMessage(`{"questions":[`)}, InvalidModelOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(llm.NewMockProvider(llm.MockResponse{Err: tt.err}), DefaultConfig(), quietLogger())
			_, err := svc.Generate(context.Background(), []string{"text"})
			gerr := wantKind(t, err, tt.kind)
			if !errors.Is(err, tt.err) {
				t.Errorf("cause not wrapped: %v", gerr)
			}
			if strings.Contains(gerr.UserMessage(), "401") {
				t.Error("user message leaks provider detail")
			}
		})
	}
}

func TestGenerate_Purpose(t *testing.T) {
	var seen string
	p := purposeSpy{Provider: llm.NewMockProvider(llm.MockResponse{Content: validSetJSON(t)}), seen: &seen}
	svc := New(p, DefaultConfig(), quietLogger())
	if _, err := svc.Generate(context.Background(), []string{"text"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if seen != Purpose {
		t.Errorf("expected purpose %q, got %q", Purpose, seen)
	}
}

type purposeSpy struct {
	llm.Provider
	seen *string
}

func (p purposeSpy) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	*p.seen = llm.PurposeFrom(ctx)
	return p.Provider.Generate(ctx, req)
}

func TestQuestionSetMarshal(t *testing.T) {
	set := QuestionSet{Questions: []Question{{Kind: KindShortAnswer, Prompt: "q", Answer: "a"}}}
	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(data), `"options":[]`) {
		t.Errorf("expected empty options array, got %s", data)
	}
	data, _ = json.Marshal(QuestionSet{})
	if string(data) != `{"questions":[]}` {
		t.Errorf("expected empty questions array, got %s", data)
	}
}

func TestGenerationErrorMessages(t *testing.T) {
	tests := []struct {
		kind   ErrorKind
		status int
		msg    string
	}{
		{ValidationError, 400, MsgMissingTexts},
		{InvalidModelOutput, 500, MsgInvalidOutput},
		{UpstreamFailure, 500, MsgUpstream},
	}
	for _, tt := range tests {
		e := &GenerationError{Kind: tt.kind}
		if e.HTTPStatus() != tt.status || e.UserMessage() != tt.msg {
			t.Errorf("%s: got %d %q", tt.kind, e.HTTPStatus(), e.UserMessage())
		}
	}
}
