// Package upload is the first screen: pick a PDF and turn it into a quiz.
package upload

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/router"
	"github.com/pdfquiz/pdfquiz/internal/screen"
	"github.com/pdfquiz/pdfquiz/internal/screens/quiz"
	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/ui/components"
	"github.com/pdfquiz/pdfquiz/internal/ui/layout"
	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

// Messages shown for input problems caught before the controller runs.
const (
	MsgNoPath     = "PDF 파일 경로를 입력해주세요."
	MsgReadFailed = "파일을 읽을 수 없습니다."
	MsgNotPDF     = "PDF 파일만 업로드할 수 있습니다."
)

// submitDoneMsg is sent when extraction and generation finish.
type submitDoneMsg struct {
	Err error
}

// UploadScreen asks for a file path and drives Submit.
type UploadScreen struct {
	ctrl     *session.Controller
	input    components.TextInput
	spinner  components.Spinner
	readFile func(string) ([]byte, error)
	busy     bool
	errMsg   string
}

var _ screen.Screen = (*UploadScreen)(nil)
var _ screen.KeyHintProvider = (*UploadScreen)(nil)

// New creates the upload screen. initialPath pre-fills the input.
func New(ctrl *session.Controller, initialPath string) *UploadScreen {
	s := &UploadScreen{
		ctrl:     ctrl,
		input:    components.NewTextInput("/path/to/lecture.pdf", 0),
		readFile: os.ReadFile,
	}
	if initialPath != "" {
		s.input.SetValue(initialPath)
	}
	return s
}

// Init focuses the input. A controller restored into a quiz goes straight
// to the quiz screen.
func (s *UploadScreen) Init() tea.Cmd {
	switch s.ctrl.Phase() {
	case session.PhaseReady, session.PhaseGraded:
		q := quiz.New(s.ctrl)
		return tea.Batch(s.input.Init(), func() tea.Msg { return router.PushScreenMsg{Screen: q} })
	}
	return s.input.Init()
}

func (s *UploadScreen) Title() string {
	return "PDF 선택"
}

func (s *UploadScreen) KeyHints() []layout.KeyHint {
	if s.busy {
		return []layout.KeyHint{{Key: "Ctrl+C", Description: "종료"}}
	}
	hints := []layout.KeyHint{{Key: "Enter", Description: "문제 만들기"}}
	if s.ctrl.HasFile() {
		hints = append(hints, layout.KeyHint{Key: "Ctrl+R", Description: "같은 파일로 다시 시도"})
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "종료"})
}

func (s *UploadScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.SpinnerTickMsg:
		if !s.busy {
			return s, nil
		}
		s.spinner = s.spinner.Advance()
		return s, components.SpinnerTick()

	case submitDoneMsg:
		return s.handleSubmitDone(msg)

	case screen.ResumedMsg:
		// Back from the quiz: show why, if it ended in a failure.
		s.errMsg = s.ctrl.LastError()
		return s, s.input.Init()

	case screen.PhaseMsg:
		return s, nil

	case tea.KeyMsg:
		if s.busy {
			return s, nil
		}
		switch msg.String() {
		case "enter":
			return s.handleEnter()
		case "ctrl+r":
			return s.handleRetry()
		}
	}

	if s.busy {
		return s, nil
	}
	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *UploadScreen) handleEnter() (screen.Screen, tea.Cmd) {
	path := strings.TrimSpace(s.input.Value())
	if path == "" {
		s.errMsg = MsgNoPath
		return s, nil
	}
	data, err := s.readFile(path)
	if err != nil {
		s.errMsg = MsgReadFailed
		return s, nil
	}
	if err := s.ctrl.SelectFile(filepath.Base(path), data); err != nil {
		if errors.Is(err, session.ErrNotPDF) {
			s.errMsg = MsgNotPDF
		} else {
			s.errMsg = err.Error()
		}
		return s, nil
	}
	return s.submit()
}

// handleRetry resubmits the file kept from a failed attempt.
func (s *UploadScreen) handleRetry() (screen.Screen, tea.Cmd) {
	if !s.ctrl.HasFile() {
		return s, nil
	}
	return s.submit()
}

func (s *UploadScreen) submit() (screen.Screen, tea.Cmd) {
	s.errMsg = ""
	s.busy = true
	ctrl := s.ctrl
	return s, tea.Batch(
		func() tea.Msg {
			return submitDoneMsg{Err: ctrl.Submit(context.Background())}
		},
		components.SpinnerTick(),
	)
}

func (s *UploadScreen) handleSubmitDone(msg submitDoneMsg) (screen.Screen, tea.Cmd) {
	s.busy = false
	if msg.Err != nil {
		s.errMsg = s.ctrl.LastError()
		if s.errMsg == "" {
			s.errMsg = msg.Err.Error()
		}
		return s, nil
	}
	q := quiz.New(s.ctrl)
	return s, func() tea.Msg { return router.PushScreenMsg{Screen: q} }
}

func (s *UploadScreen) View(width, height int) string {
	cw := components.ContentWidth(width)
	snap := s.ctrl.Display()

	var b strings.Builder
	if !layout.IsCompactHeight(height) {
		b.WriteString("\n\n")
	}
	b.WriteString(theme.Title.Width(cw).Render("PDF로 시험 문제 만들기"))
	b.WriteString("\n")
	b.WriteString(theme.Subtitle.Width(cw).Render("강의 자료 PDF에서 객관식 8문제와 단답형 2문제를 만듭니다."))
	b.WriteString("\n\n")

	var card strings.Builder
	card.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("파일 경로"))
	card.WriteString("\n")
	card.WriteString(s.input.View())
	if snap.SourceFile != nil {
		card.WriteString("\n\n")
		card.WriteString(theme.Dimmed.Render("선택된 파일: " + snap.SourceFile.Name))
	}
	b.WriteString(components.Card(card.String(), cw))
	b.WriteString("\n\n")

	if s.busy {
		b.WriteString(s.spinner.View(phaseLabel(s.ctrl.Phase())))
		b.WriteString("\n")
	} else if s.errMsg != "" {
		b.WriteString(theme.ErrorBanner.Render(s.errMsg))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

func phaseLabel(p session.Phase) string {
	switch p {
	case session.PhaseExtracting:
		return "PDF에서 텍스트를 추출하는 중..."
	case session.PhaseGenerating:
		return "AI가 문제를 만드는 중..."
	default:
		return "준비 중..."
	}
}
