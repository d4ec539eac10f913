// Package session drives one user's quiz through file selection,
// extraction, generation, answering and grading.
package session

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/llm"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

var (
	// ErrNotPDF is returned by SelectFile for non-PDF content.
	ErrNotPDF = extract.ErrNotPDF
	// ErrAlreadyGraded is returned by Answer once the quiz is graded.
	ErrAlreadyGraded = errors.New("quiz already graded")
	// ErrQuestionIndex is returned for an index outside the question set.
	ErrQuestionIndex = errors.New("question index out of range")
	// ErrInvalidTransition is returned when an event is not allowed in the
	// current phase.
	ErrInvalidTransition = errors.New("invalid session transition")
	// ErrBusy is returned while extraction or generation is running.
	ErrBusy = errors.New("session busy")
)

// Recorder receives quiz lifecycle events. *store.EventLog implements it.
type Recorder interface {
	AppendQuizEvent(ctx context.Context, data store.QuizEventData) error
}

// Config holds the controller's collaborators and limits.
type Config struct {
	// ExtractTimeout and GenerateTimeout bound each operation; zero means
	// no limit beyond the caller's context.
	ExtractTimeout  time.Duration
	GenerateTimeout time.Duration

	// Recorder is optional.
	Recorder Recorder

	// OnPhase, when set, is called outside the lock after every phase change.
	OnPhase func(Phase)

	Log logrus.FieldLogger
}

// Controller serializes all events on a single Session. Long operations run
// without holding the lock; the session is marked busy meanwhile.
type Controller struct {
	mu        sync.Mutex
	s         Session
	extractor extract.Extractor
	generator quizgen.Generator
	cfg       Config
	log       logrus.FieldLogger
}

// New returns a controller holding a fresh idle session.
func New(extractor extract.Extractor, generator quizgen.Generator, cfg Config) *Controller {
	log := cfg.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	c := &Controller{extractor: extractor, generator: generator, cfg: cfg, log: log}
	c.s = Session{ID: uuid.NewString(), Answers: map[int]string{}}
	return c
}

// Snapshot returns a deep copy of the session for rendering or persistence.
func (c *Controller) Snapshot() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.clone()
}

// Display returns a copy of the session for drawing. Unlike Snapshot it
// leaves out the file bytes and the extracted pages.
func (c *Controller) Display() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.light()
}

// HasFile reports whether a source document is selected.
func (c *Controller) HasFile() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.SourceFile != nil
}

// LastError returns the user-facing message of the latest failure.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.LastError
}

func (c *Controller) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Total()
}

// Question returns question i of the current set.
func (c *Controller) Question(i int) (quizgen.Question, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.QuestionSet == nil || i < 0 || i >= len(c.s.QuestionSet.Questions) {
		return quizgen.Question{}, false
	}
	q := c.s.QuestionSet.Questions[i]
	q.Options = slices.Clone(q.Options)
	return q, true
}

// AnswerAt returns the answer given to question i, or "".
func (c *Controller) AnswerAt(i int) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Answers[i]
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.s.Phase
}

// Restore replaces an idle session with a previously saved one. A saved
// busy phase falls back to Idle since the operation did not survive.
func (c *Controller) Restore(saved Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Phase.Busy() {
		return ErrBusy
	}
	if c.s.Phase != PhaseIdle {
		return fmt.Errorf("%w: restore in phase %s", ErrInvalidTransition, c.s.Phase)
	}

	s := saved.clone()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	switch {
	case s.Phase.Busy(), s.QuestionSet == nil:
		s.Phase = PhaseIdle
		s.QuestionSet = nil
		s.clearProgress()
	case s.Graded:
		s.Phase = PhaseGraded
	default:
		s.Phase = PhaseReady
		s.Score, s.Correct = 0, nil
	}
	c.s = s
	return nil
}

// SelectFile sets the source document and clears everything derived from
// the previous one. Non-PDF data leaves no file selected.
func (c *Controller) SelectFile(name string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.s.Phase.Busy() {
		return ErrBusy
	}
	if c.s.Phase != PhaseIdle {
		return fmt.Errorf("%w: select file in phase %s", ErrInvalidTransition, c.s.Phase)
	}

	c.s.SourceFile = nil
	c.s.ExtractedPages = nil
	c.s.clearQuiz()
	c.s.LastError = ""

	if !extract.IsPDF(data) {
		return ErrNotPDF
	}
	c.s.SourceFile = &SourceFile{Name: name, Data: bytes.Clone(data)}
	return nil
}

// Submit extracts the selected file and generates a quiz from its pages.
// It blocks until both finish. On failure the session returns to Idle with
// the file kept and the error returned.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.s.Phase != PhaseIdle || c.s.SourceFile == nil {
		phase := c.s.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: submit in phase %s without a file", ErrInvalidTransition, phase)
	}
	file := *c.s.SourceFile
	id := c.s.ID
	c.s.LastError = ""
	c.setPhaseLocked(PhaseExtracting)
	c.mu.Unlock()
	c.notify(PhaseExtracting)

	pages, err := c.runExtract(ctx, file.Data)

	c.mu.Lock()
	if err != nil {
		c.s.ExtractedPages = nil
		c.s.LastError = extract.UserMessage(err)
		c.setPhaseLocked(PhaseIdle)
		c.mu.Unlock()
		c.notify(PhaseIdle)
		c.record(ctx, store.QuizEventData{Action: store.QuizFailed, SourceName: file.Name, ErrorMessage: err.Error()})
		return err
	}
	c.s.ExtractedPages = pages
	c.setPhaseLocked(PhaseGenerating)
	c.mu.Unlock()
	c.notify(PhaseGenerating)

	return c.generate(ctx, id, file.Name, pages)
}

// NewQuiz regenerates from the stored pages, replacing the current set.
func (c *Controller) NewQuiz(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if (c.s.Phase != PhaseReady && c.s.Phase != PhaseGraded) || len(c.s.ExtractedPages) == 0 {
		phase := c.s.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: new quiz in phase %s", ErrInvalidTransition, phase)
	}
	pages := c.s.ExtractedPages
	id := c.s.ID
	name := ""
	if c.s.SourceFile != nil {
		name = c.s.SourceFile.Name
	}
	c.s.LastError = ""
	c.setPhaseLocked(PhaseGenerating)
	c.mu.Unlock()
	c.notify(PhaseGenerating)

	return c.generate(ctx, id, name, pages)
}

// generate runs the model call for session id, already marked Generating,
// and settles it in Ready or Idle.
func (c *Controller) generate(ctx context.Context, id, name string, pages []string) error {
	if c.cfg.GenerateTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.GenerateTimeout)
		defer cancel()
	}
	res, err := c.generator.Generate(llm.WithSessionID(ctx, id), pages)

	c.mu.Lock()
	if err != nil {
		c.s.clearQuiz()
		c.s.LastError = generateMessage(err)
		c.setPhaseLocked(PhaseIdle)
		c.mu.Unlock()
		c.notify(PhaseIdle)
		c.log.WithFields(logrus.Fields{"session": id}).WithError(err).Warn("quiz generation failed")
		c.recordFor(ctx, id, store.QuizEventData{Action: store.QuizFailed, SourceName: name, PageCount: len(pages), ErrorMessage: err.Error()})
		return err
	}
	set := res.Set
	c.s.QuestionSet = &set
	c.s.clearProgress()
	c.setPhaseLocked(PhaseReady)
	c.mu.Unlock()
	c.notify(PhaseReady)

	c.recordFor(ctx, id, store.QuizEventData{
		Action:        store.QuizGenerated,
		SourceName:    name,
		PageCount:     len(pages),
		QuestionCount: len(set.Questions),
	})
	return nil
}

// Answer records the answer for question i.
func (c *Controller) Answer(i int, answer string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch {
	case c.s.Phase.Busy():
		return ErrBusy
	case c.s.Graded:
		return ErrAlreadyGraded
	case c.s.Phase != PhaseReady:
		return fmt.Errorf("%w: answer in phase %s", ErrInvalidTransition, c.s.Phase)
	case i < 0 || i >= c.s.Total():
		return fmt.Errorf("%w: %d", ErrQuestionIndex, i)
	}
	c.s.Answers[i] = answer
	return nil
}

// Grade scores the quiz. Grading an already graded quiz returns the same
// score without changing anything.
func (c *Controller) Grade(ctx context.Context) (int, error) {
	c.mu.Lock()
	switch {
	case c.s.Phase.Busy():
		c.mu.Unlock()
		return 0, ErrBusy
	case c.s.Phase == PhaseGraded:
		score := c.s.Score
		c.mu.Unlock()
		return score, nil
	case c.s.Phase != PhaseReady:
		phase := c.s.Phase
		c.mu.Unlock()
		return 0, fmt.Errorf("%w: grade in phase %s", ErrInvalidTransition, phase)
	}

	score, correct := quizgen.Grade(c.s.QuestionSet, c.s.Answers)
	c.s.Score = score
	c.s.Correct = correct
	c.s.Graded = true
	c.setPhaseLocked(PhaseGraded)
	total := c.s.Total()
	var name string
	if c.s.SourceFile != nil {
		name = c.s.SourceFile.Name
	}
	c.mu.Unlock()
	c.notify(PhaseGraded)

	c.record(ctx, store.QuizEventData{Action: store.QuizGraded, SourceName: name, QuestionCount: total, Score: score})
	return score, nil
}

// Retry clears answers and grading so the same questions can be taken again.
func (c *Controller) Retry() error {
	c.mu.Lock()
	if c.s.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	if c.s.Phase != PhaseGraded {
		phase := c.s.Phase
		c.mu.Unlock()
		return fmt.Errorf("%w: retry in phase %s", ErrInvalidTransition, phase)
	}
	c.s.clearProgress()
	c.setPhaseLocked(PhaseReady)
	c.mu.Unlock()
	c.notify(PhaseReady)
	return nil
}

// Reset discards the session and starts a new one.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	if c.s.Phase.Busy() {
		c.mu.Unlock()
		return ErrBusy
	}
	old := c.s.ID
	c.s = Session{ID: uuid.NewString(), Answers: map[int]string{}}
	c.mu.Unlock()
	c.notify(PhaseIdle)

	c.recordFor(ctx, old, store.QuizEventData{Action: store.QuizReset})
	return nil
}

func (c *Controller) runExtract(ctx context.Context, data []byte) ([]string, error) {
	if c.cfg.ExtractTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.ExtractTimeout)
		defer cancel()
	}
	return c.extractor.Extract(ctx, bytes.NewReader(data), int64(len(data)))
}

func (c *Controller) setPhaseLocked(p Phase) {
	c.s.Phase = p
}

func (c *Controller) notify(p Phase) {
	if c.cfg.OnPhase != nil {
		c.cfg.OnPhase(p)
	}
}

func (c *Controller) record(ctx context.Context, data store.QuizEventData) {
	c.mu.Lock()
	id := c.s.ID
	c.mu.Unlock()
	c.recordFor(ctx, id, data)
}

func (c *Controller) recordFor(ctx context.Context, id string, data store.QuizEventData) {
	if c.cfg.Recorder == nil {
		return
	}
	data.SessionID = id
	if err := c.cfg.Recorder.AppendQuizEvent(context.WithoutCancel(ctx), data); err != nil {
		c.log.WithError(err).WithField("action", data.Action).Warn("record quiz event")
	}
}

func generateMessage(err error) string {
	var gerr *quizgen.GenerationError
	if errors.As(err, &gerr) {
		return gerr.UserMessage()
	}
	return quizgen.MsgUpstream
}
