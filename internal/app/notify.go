package app

import (
	"sync"

	tea "charm.land/bubbletea/v2"

	"github.com/pdfquiz/pdfquiz/internal/screen"
	"github.com/pdfquiz/pdfquiz/internal/session"
)

// PhaseNotifier turns controller phase changes into screen.PhaseMsg for a
// running program. Pass Notify as session.Config.OnPhase.
type PhaseNotifier struct {
	mu   sync.Mutex
	prog *tea.Program
}

func NewPhaseNotifier() *PhaseNotifier {
	return &PhaseNotifier{}
}

// Notify forwards p to the program, if one is running. The send happens on
// its own goroutine because the controller may call this from inside Update.
func (n *PhaseNotifier) Notify(p session.Phase) {
	n.mu.Lock()
	prog := n.prog
	n.mu.Unlock()
	if prog == nil {
		return
	}
	go prog.Send(screen.PhaseMsg{Phase: p})
}

func (n *PhaseNotifier) attach(p *tea.Program) {
	n.mu.Lock()
	n.prog = p
	n.mu.Unlock()
}
