package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/sirupsen/logrus"

	"github.com/pdfquiz/pdfquiz/internal/router"
	"github.com/pdfquiz/pdfquiz/internal/screen"
	"github.com/pdfquiz/pdfquiz/internal/screens/upload"
	"github.com/pdfquiz/pdfquiz/internal/session"
	"github.com/pdfquiz/pdfquiz/internal/store"
	"github.com/pdfquiz/pdfquiz/internal/ui/layout"
)

// keepSnapshots is how many saved sessions survive a prune.
const keepSnapshots = 5

// SnapshotStore persists quiz sessions between runs. *store.SnapshotRepo
// implements it.
type SnapshotStore interface {
	Save(ctx context.Context, sessionID string, data json.RawMessage) error
	Latest(ctx context.Context) (*store.Snapshot, error)
	Prune(ctx context.Context, keep int) error
}

// Options configures the terminal client.
type Options struct {
	Controller *session.Controller

	// Notifier, when set, must be the one passed as the controller's OnPhase.
	Notifier *PhaseNotifier

	// Snapshots is optional; without it nothing is saved on exit.
	Snapshots SnapshotStore

	// InitialPath pre-fills the file input.
	InitialPath string

	Log logrus.FieldLogger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	ctrl   *session.Controller
	width  int
	height int
}

// newAppModel creates a new AppModel with the upload screen.
func newAppModel(ctrl *session.Controller, initialPath string) AppModel {
	return AppModel{
		router: router.New(upload.New(ctrl, initialPath)),
		ctrl:   ctrl,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}
	v.SetContent(m.render())
	return v
}

// render draws the full frame for the current size.
func (m AppModel) render() string {
	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, headerStatus(m.ctrl.Display()), m.width)

	footerHints := []layout.KeyHint{
		{Key: "Enter", Description: "선택"},
		{Key: "Ctrl+C", Description: "종료"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		if hints := hp.KeyHints(); len(hints) > 0 {
			footerHints = hints
		}
	}

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

// headerStatus names the source document and, once graded, the score.
func headerStatus(s session.Session) string {
	status := ""
	if s.SourceFile != nil {
		status = s.SourceFile.Name
	}
	if s.Graded {
		score := fmt.Sprintf("%d/%d", s.Score, s.Total())
		if status != "" {
			return status + "  " + score
		}
		return score
	}
	return status
}

// Run starts the Bubble Tea program and saves the session when it exits.
func Run(opts Options) error {
	log := opts.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	p := tea.NewProgram(newAppModel(opts.Controller, opts.InitialPath))
	if opts.Notifier != nil {
		opts.Notifier.attach(p)
		defer opts.Notifier.attach(nil)
	}

	_, err := p.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
	}

	if opts.Snapshots != nil {
		if serr := SaveSnapshot(context.Background(), opts.Snapshots, opts.Controller); serr != nil {
			log.WithError(serr).Warn("save session snapshot")
		}
	}
	return err
}

// SaveSnapshot stores the controller's session and prunes old snapshots.
// Sessions without a quiz are not worth resuming and are skipped.
func SaveSnapshot(ctx context.Context, snaps SnapshotStore, ctrl *session.Controller) error {
	s := ctrl.Snapshot()
	if s.QuestionSet == nil {
		return nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := snaps.Save(ctx, s.ID, data); err != nil {
		return err
	}
	return snaps.Prune(ctx, keepSnapshots)
}

// RestoreLatest loads the most recent snapshot into ctrl. It reports false
// when there is nothing to resume.
func RestoreLatest(ctx context.Context, snaps SnapshotStore, ctrl *session.Controller) (bool, error) {
	snap, err := snaps.Latest(ctx)
	if err != nil {
		return false, err
	}
	if snap == nil {
		return false, nil
	}
	var s session.Session
	if err := json.Unmarshal(snap.Data, &s); err != nil {
		return false, fmt.Errorf("decode snapshot %d: %w", snap.ID, err)
	}
	if err := ctrl.Restore(s); err != nil {
		return false, err
	}
	return ctrl.Phase() != session.PhaseIdle, nil
}
