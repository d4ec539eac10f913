package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/llm"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

var pdfBytes = []byte("%PDF-1.4\n% test document\n")

type fakeExtractor struct {
	pages []string
	err   error
	calls int
}

func (f *fakeExtractor) Extract(ctx context.Context, _ io.ReaderAt, _ int64) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.pages, nil
}

type fakeGenerator struct {
	mu    sync.Mutex
	sets  []quizgen.QuestionSet
	err   error
	calls int
	got   [][]string
	block chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, texts []string) (*quizgen.Result, error) {
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.got = append(f.got, texts)
	if f.err != nil {
		return nil, f.err
	}
	set := f.sets[(f.calls-1)%len(f.sets)]
	return &quizgen.Result{Set: set, Model: "fake"}, nil
}

type memRecorder struct {
	mu     sync.Mutex
	events []store.QuizEventData
}

func (r *memRecorder) AppendQuizEvent(_ context.Context, data store.QuizEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return nil
}

func (r *memRecorder) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

// testSet returns 8 MC questions answered A..D in turn and 2 short answers.
func testSet(tag string) quizgen.QuestionSet {
	var set quizgen.QuestionSet
	for i := 0; i < 8; i++ {
		set.Questions = append(set.Questions, quizgen.Question{
			Kind:        quizgen.KindMultipleChoice,
			Prompt:      fmt.Sprintf("%s 문제 %d", tag, i+1),
			Options:     []string{"가", "나", "다", "라"},
			Answer:      quizgen.OptionLabels[i%4],
			Explanation: "해설",
		})
	}
	set.Questions = append(set.Questions,
		quizgen.Question{Kind: quizgen.KindShortAnswer, Prompt: tag + " 단답 1", Answer: "광합성", Explanation: "해설"},
		quizgen.Question{Kind: quizgen.KindShortAnswer, Prompt: tag + " 단답 2", Answer: "Mitochondria", Explanation: "해설"},
	)
	return set
}

type harness struct {
	c   *Controller
	x   *fakeExtractor
	g   *fakeGenerator
	rec *memRecorder
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log, _ := test.NewNullLogger()
	h := &harness{
		x:   &fakeExtractor{pages: []string{extract.FormatPage(1, "one"), extract.FormatPage(2, "two")}},
		g:   &fakeGenerator{sets: []quizgen.QuestionSet{testSet("첫"), testSet("둘")}},
		rec: &memRecorder{},
	}
	h.c = New(h.x, h.g, Config{Recorder: h.rec, Log: log})
	return h
}

func (h *harness) ready(t *testing.T) {
	t.Helper()
	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))
	require.NoError(t, h.c.Submit(context.Background()))
	require.Equal(t, PhaseReady, h.c.Phase())
}

func answerAll(t *testing.T, c *Controller) {
	t.Helper()
	s := c.Snapshot()
	for i, q := range s.QuestionSet.Questions {
		require.NoError(t, c.Answer(i, q.Answer))
	}
}

func TestSelectFile(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))
	s := h.c.Snapshot()
	require.NotNil(t, s.SourceFile)
	assert.Equal(t, "bio.pdf", s.SourceFile.Name)
	assert.Equal(t, PhaseIdle, s.Phase)

	err := h.c.SelectFile("notes.txt", []byte("just text"))
	assert.ErrorIs(t, err, ErrNotPDF)
	assert.Nil(t, h.c.Snapshot().SourceFile, "non-PDF must leave no file selected")
}

func TestSubmit_HappyPath(t *testing.T) {
	h := newHarness(t)
	var phases []Phase
	h.c.cfg.OnPhase = func(p Phase) { phases = append(phases, p) }

	h.ready(t)

	s := h.c.Snapshot()
	assert.Len(t, s.ExtractedPages, 2)
	assert.Equal(t, 10, s.Total())
	assert.Empty(t, s.Answers)
	assert.False(t, s.Graded)
	assert.Equal(t, []Phase{PhaseExtracting, PhaseGenerating, PhaseReady}, phases)
	assert.Equal(t, h.x.pages, h.g.got[0], "generator receives the extracted pages")
	assert.Equal(t, []string{store.QuizGenerated}, h.rec.actions())
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, s.ID, h.rec.events[0].SessionID)
}

func TestSubmit_WithoutFile(t *testing.T) {
	h := newHarness(t)
	err := h.c.Submit(context.Background())
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Zero(t, h.x.calls)
}

func TestSubmit_ExtractionFailure(t *testing.T) {
	h := newHarness(t)
	h.x.err = &extract.ExtractionError{Backend: "native", Err: errors.New("bad xref")}

	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))
	err := h.c.Submit(context.Background())
	require.Error(t, err)

	s := h.c.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.NotNil(t, s.SourceFile, "file is kept after extraction failure")
	assert.NotEmpty(t, s.LastError)
	assert.Zero(t, h.g.calls)
	assert.Equal(t, []string{store.QuizFailed}, h.rec.actions())
}

func TestSubmit_GenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.g.err = &quizgen.GenerationError{Kind: quizgen.InvalidModelOutput, Err: errors.New("not json")}

	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))
	err := h.c.Submit(context.Background())
	require.Error(t, err)

	s := h.c.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.QuestionSet)
	assert.Equal(t, quizgen.MsgInvalidOutput, s.LastError)
}

func TestAnswerAndGrade_AllCorrect(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	answerAll(t, h.c)

	score, err := h.c.Grade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, score)

	s := h.c.Snapshot()
	assert.True(t, s.Graded)
	assert.Equal(t, PhaseGraded, s.Phase)
	assert.Len(t, s.Correct, 10)
}

func TestAnswer_CaseInsensitive(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	require.NoError(t, h.c.Answer(0, "a"))
	require.NoError(t, h.c.Answer(9, "  mitochondria "))
	score, err := h.c.Grade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, score)
}

func TestAnswer_Errors(t *testing.T) {
	h := newHarness(t)

	assert.ErrorIs(t, h.c.Answer(0, "A"), ErrInvalidTransition)

	h.ready(t)
	assert.ErrorIs(t, h.c.Answer(10, "A"), ErrQuestionIndex)
	assert.ErrorIs(t, h.c.Answer(-1, "A"), ErrQuestionIndex)

	require.NoError(t, h.c.Answer(0, "B"))
	_, err := h.c.Grade(context.Background())
	require.NoError(t, err)

	assert.ErrorIs(t, h.c.Answer(0, "A"), ErrAlreadyGraded)
	assert.Equal(t, "B", h.c.Snapshot().Answers[0], "answers are frozen after grading")
}

func TestGrade_Idempotent(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	require.NoError(t, h.c.Answer(0, "A"))

	first, err := h.c.Grade(context.Background())
	require.NoError(t, err)
	before := h.c.Snapshot()

	second, err := h.c.Grade(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, before, h.c.Snapshot())
	assert.Equal(t, []string{store.QuizGenerated, store.QuizGraded}, h.rec.actions(), "regrading records nothing")
}

func TestGrade_Unanswered(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	score, err := h.c.Grade(context.Background())
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestRetry_KeepsQuestions(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	answerAll(t, h.c)
	_, err := h.c.Grade(context.Background())
	require.NoError(t, err)

	before, _ := json.Marshal(h.c.Snapshot().QuestionSet)
	require.NoError(t, h.c.Retry())

	s := h.c.Snapshot()
	after, _ := json.Marshal(s.QuestionSet)
	assert.Equal(t, string(before), string(after), "question set must be unchanged")
	assert.Empty(t, s.Answers)
	assert.False(t, s.Graded)
	assert.Zero(t, s.Score)
	assert.Equal(t, PhaseReady, s.Phase)
	assert.Equal(t, 1, h.g.calls, "retry must not regenerate")

	assert.ErrorIs(t, h.c.Retry(), ErrInvalidTransition)
}

func TestNewQuiz_RegeneratesFromPages(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	require.NoError(t, h.c.Answer(0, "A"))

	require.NoError(t, h.c.NewQuiz(context.Background()))

	s := h.c.Snapshot()
	assert.Equal(t, 1, h.x.calls, "new quiz reuses the extracted pages")
	assert.Equal(t, 2, h.g.calls)
	assert.Equal(t, h.g.got[0], h.g.got[1])
	assert.Equal(t, "둘 문제 1", s.QuestionSet.Questions[0].Prompt)
	assert.Empty(t, s.Answers)
	assert.Equal(t, PhaseReady, s.Phase)
}

func TestNewQuiz_FromIdle(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.c.NewQuiz(context.Background()), ErrInvalidTransition)
}

func TestReset(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	oldID := h.c.Snapshot().ID

	require.NoError(t, h.c.Reset(context.Background()))

	s := h.c.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Nil(t, s.SourceFile)
	assert.Nil(t, s.ExtractedPages)
	assert.Nil(t, s.QuestionSet)
	assert.NotEqual(t, oldID, s.ID)

	last := h.rec.events[len(h.rec.events)-1]
	assert.Equal(t, store.QuizReset, last.Action)
	assert.Equal(t, oldID, last.SessionID)
}

func TestBusy(t *testing.T) {
	h := newHarness(t)
	h.g.block = make(chan struct{})
	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))

	done := make(chan error, 1)
	go func() { done <- h.c.Submit(context.Background()) }()

	require.Eventually(t, func() bool { return h.c.Phase() == PhaseGenerating }, time.Second, time.Millisecond)

	assert.ErrorIs(t, h.c.Submit(context.Background()), ErrBusy)
	assert.ErrorIs(t, h.c.Reset(context.Background()), ErrBusy)
	assert.ErrorIs(t, h.c.SelectFile("x.pdf", pdfBytes), ErrBusy)
	assert.ErrorIs(t, h.c.Answer(0, "A"), ErrBusy)
	_, err := h.c.Grade(context.Background())
	assert.ErrorIs(t, err, ErrBusy)

	close(h.g.block)
	require.NoError(t, <-done)
	assert.Equal(t, PhaseReady, h.c.Phase())
}

func TestGenerateTimeout(t *testing.T) {
	h := newHarness(t)
	h.c.cfg.GenerateTimeout = time.Millisecond
	var deadline bool
	h.c.generator = generatorFunc(func(ctx context.Context, _ []string) (*quizgen.Result, error) {
		_, deadline = ctx.Deadline()
		<-ctx.Done()
		return nil, &quizgen.GenerationError{Kind: quizgen.UpstreamFailure, Err: ctx.Err()}
	})

	require.NoError(t, h.c.SelectFile("bio.pdf", pdfBytes))
	err := h.c.Submit(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, deadline)
	assert.Equal(t, PhaseIdle, h.c.Phase())
}

type generatorFunc func(ctx context.Context, texts []string) (*quizgen.Result, error)

func (f generatorFunc) Generate(ctx context.Context, texts []string) (*quizgen.Result, error) {
	return f(ctx, texts)
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	h := newHarness(t)
	h.ready(t)

	s := h.c.Snapshot()
	s.Answers[0] = "Z"
	s.QuestionSet.Questions[0].Options[0] = "changed"
	s.ExtractedPages[0] = "changed"

	fresh := h.c.Snapshot()
	assert.NotContains(t, fresh.Answers, 0)
	assert.Equal(t, "가", fresh.QuestionSet.Questions[0].Options[0])
	assert.NotEqual(t, "changed", fresh.ExtractedPages[0])
}

func TestRestore(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	require.NoError(t, h.c.Answer(0, "A"))
	saved, err := json.Marshal(h.c.Snapshot())
	require.NoError(t, err)

	other := newHarness(t)
	var s Session
	require.NoError(t, json.Unmarshal(saved, &s))
	require.NoError(t, other.c.Restore(s))

	got := other.c.Snapshot()
	assert.Equal(t, PhaseReady, got.Phase)
	assert.Equal(t, "A", got.Answers[0])
	assert.Equal(t, 10, got.Total())
	assert.Equal(t, "bio.pdf", got.SourceFile.Name)

	require.NoError(t, other.c.NewQuiz(context.Background()), "restored pages allow a new quiz")

	assert.ErrorIs(t, other.c.Restore(s), ErrInvalidTransition)
}

func TestRestore_BusyPhaseFallsBackToIdle(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.c.Restore(Session{ID: "x", Phase: PhaseGenerating, ExtractedPages: []string{"p"}}))
	s := h.c.Snapshot()
	assert.Equal(t, PhaseIdle, s.Phase)
	assert.Equal(t, "x", s.ID)
}

func TestGenerate_TagsModelCallsWithSessionID(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "quiz.db"))
	require.NoError(t, err)
	defer st.Close()

	mock, err := llm.NewMockProviderFromFile("../quizgen/testdata/question_set.json")
	require.NoError(t, err)
	log, _ := test.NewNullLogger()
	provider := llm.WithLogging(mock, "mock", st.Events(), log)
	gen := quizgen.New(provider, quizgen.DefaultConfig(), log)

	x := &fakeExtractor{pages: []string{extract.FormatPage(1, "one")}}
	c := New(x, gen, Config{Recorder: st.Events(), Log: log})
	require.NoError(t, c.SelectFile("bio.pdf", pdfBytes))
	require.NoError(t, c.Submit(context.Background()))
	require.NoError(t, c.NewQuiz(context.Background()))

	id := c.Snapshot().ID
	events, err := st.Events().QueryLLMEvents(context.Background(), store.QueryOpts{SessionID: id})
	require.NoError(t, err)
	assert.Len(t, events, 2, "submit and new quiz each make one call")

	all, err := st.Events().QueryLLMEvents(context.Background(), store.QueryOpts{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDisplay_LeavesOutFileAndPages(t *testing.T) {
	h := newHarness(t)
	h.ready(t)
	require.NoError(t, h.c.Answer(0, "B"))

	d := h.c.Display()
	require.NotNil(t, d.SourceFile)
	assert.Equal(t, "bio.pdf", d.SourceFile.Name)
	assert.Nil(t, d.SourceFile.Data)
	assert.Nil(t, d.ExtractedPages)
	assert.Equal(t, 10, d.Total())
	assert.Equal(t, "B", d.Answers[0])

	d.Answers[1] = "Z"
	d.QuestionSet.Questions[0].Options[0] = "changed"
	assert.Empty(t, h.c.AnswerAt(1))

	assert.NotEmpty(t, h.c.Snapshot().SourceFile.Data, "the controller keeps the bytes")
	assert.Len(t, h.c.Snapshot().ExtractedPages, 2)
}

func TestAccessors(t *testing.T) {
	h := newHarness(t)
	assert.False(t, h.c.HasFile())
	assert.Zero(t, h.c.Total())
	_, ok := h.c.Question(0)
	assert.False(t, ok)

	h.ready(t)
	assert.True(t, h.c.HasFile())
	assert.Equal(t, 10, h.c.Total())

	q, ok := h.c.Question(0)
	require.True(t, ok)
	assert.Equal(t, quizgen.KindMultipleChoice, q.Kind)
	q.Options[0] = "changed"
	again, _ := h.c.Question(0)
	assert.Equal(t, "가", again.Options[0])

	_, ok = h.c.Question(10)
	assert.False(t, ok)
	_, ok = h.c.Question(-1)
	assert.False(t, ok)

	require.NoError(t, h.c.Answer(8, "광합성"))
	assert.Equal(t, "광합성", h.c.AnswerAt(8))
	assert.Empty(t, h.c.AnswerAt(9))
	assert.Empty(t, h.c.LastError())
}
