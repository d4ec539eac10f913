package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/pdfquiz/pdfquiz/internal/quizgen"
	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/ui/components"
	"github.com/pdfquiz/pdfquiz/internal/ui/layout"
	"github.com/pdfquiz/pdfquiz/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	snap := s.ctrl.Display()
	if snap.QuestionSet == nil || len(snap.QuestionSet.Questions) == 0 {
		return lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.TextDim).
			Render("\n\n  표시할 문제가 없습니다.")
	}

	cw := components.ContentWidth(width)
	compact := layout.IsCompactHeight(height)
	q := snap.QuestionSet.Questions[s.index]

	var b strings.Builder
	b.WriteString(s.renderInfoLine(snap, q, cw))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", cw)))
	b.WriteString("\n")
	b.WriteString(renderNavigator(snap, s.index))
	b.WriteString("\n")
	if !compact {
		b.WriteString("\n")
	}

	b.WriteString(components.Card(s.renderQuestion(snap, q), cw))
	b.WriteString("\n")

	if snap.Graded {
		b.WriteString(renderExplanation(q, cw))
		b.WriteString("\n")
		if !compact {
			b.WriteString("\n")
		}
		b.WriteString(s.menu.View())
	}

	if s.busy {
		b.WriteString("\n")
		b.WriteString(s.spinner.View("AI가 새 문제를 만드는 중..."))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(theme.ErrorBanner.Render(s.errMsg))
		b.WriteString("\n")
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, b.String())
}

// renderInfoLine shows the question position on the left and answering
// progress or the score on the right.
func (s *QuizScreen) renderInfoLine(snap session.Session, q quizgen.Question, cw int) string {
	kind := "객관식"
	if q.Kind == quizgen.KindShortAnswer {
		kind = "단답형"
	}
	left := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("문제 %d/%d  %s", s.index+1, snap.Total(), kind))

	var right string
	if snap.Graded {
		right = theme.Correct.Render(fmt.Sprintf("점수 %d/%d", snap.Score, snap.Total()))
	} else {
		right = components.NewProgressBar("답변", answeredCount(snap), snap.Total(), cw/2).View()
	}

	pad := cw - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		return left + "\n" + right
	}
	return left + strings.Repeat(" ", pad) + right
}

// renderNavigator draws one cell per question: the shown one highlighted,
// answered ones filled, graded ones green or red.
func renderNavigator(snap session.Session, current int) string {
	cells := make([]string, 0, snap.Total())
	for i := range snap.Total() {
		label := fmt.Sprintf("%2d", i+1)
		style := theme.Dimmed
		switch {
		case snap.Graded && i < len(snap.Correct) && snap.Correct[i]:
			style = theme.Correct
		case snap.Graded:
			style = theme.Incorrect
		case strings.TrimSpace(snap.Answers[i]) != "":
			style = lipgloss.NewStyle().Foreground(theme.Secondary)
		}
		if i == current {
			style = style.Underline(true).Bold(true)
			label = "[" + strings.TrimSpace(label) + "]"
		} else {
			label = " " + label + " "
		}
		cells = append(cells, style.Render(label))
	}
	return strings.Join(cells, "")
}

func (s *QuizScreen) renderQuestion(snap session.Session, q quizgen.Question) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(q.Prompt))
	b.WriteString("\n\n")

	if q.Kind == quizgen.KindMultipleChoice {
		b.WriteString(s.mc.View())
		if !snap.Graded {
			b.WriteString(theme.Hint.Render("\nA-D 또는 ↑↓ + Enter로 선택"))
		}
		return b.String()
	}

	b.WriteString("답: " + s.input.View())
	if !snap.Graded {
		b.WriteString(theme.Hint.Render("\n\nEnter로 답 저장"))
	}
	return b.String()
}

func renderExplanation(q quizgen.Question, cw int) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Accent).Bold(true).Render("정답: " + q.Answer))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Text).Width(cw - 4).Render("해설: " + q.Explanation))
	return b.String()
}

func answeredCount(snap session.Session) int {
	n := 0
	for i := range snap.Total() {
		if strings.TrimSpace(snap.Answers[i]) != "" {
			n++
		}
	}
	return n
}
