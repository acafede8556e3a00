package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// chatView is the conversation view.
	chatView *chat.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has received its first window size.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application for the given identity.
func NewApp(ports *Ports, identity string) (*App, error) {
	if ports == nil {
		return nil, ErrMissingChatService
	}
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}
	identity = domain.NormalizeEmail(identity)
	if identity == "" {
		return nil, ErrMissingIdentity
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		chatView:    chat.NewView(s, km, ports.Chat, ports.Upload, identity),
		currentView: messages.ViewChat,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.SetContext(ctx)
	return a
}

// WithMode sets the initial query mode.
func (a *App) WithMode(mode domain.QueryMode) *App {
	a.chatView.SetMode(mode)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("plancheck"),
		a.chatView.Init(),
		a.loadGuidelineStatus(),
	)
}

func (a *App) loadGuidelineStatus() tea.Cmd {
	if a.ports.Guideline == nil {
		return nil
	}
	ctx, guideline := a.ctx, a.ports.Guideline
	return func() tea.Msg {
		status, err := guideline.Status(ctx)
		return messages.GuidelineStatusLoaded{Status: status, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		keyStr := msg.String()
		if keymap.Matches(keyStr, a.keymap.Quit) {
			a.chatView.CancelTurn()
			return a, tea.Quit
		}
		if keymap.Matches(keyStr, a.keymap.Help) {
			a.toggleHelp()
			return a, nil
		}
		if a.currentView == messages.ViewHelp {
			if keymap.Matches(keyStr, a.keymap.Cancel) {
				a.currentView = messages.ViewChat
			}
			return a, nil
		}

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.Quit:
		a.chatView.CancelTurn()
		return a, tea.Quit
	}

	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) toggleHelp() {
	if a.currentView == messages.ViewHelp {
		a.currentView = messages.ViewChat
		return
	}
	a.currentView = messages.ViewHelp
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	if a.currentView == messages.ViewHelp {
		return a.viewHelp()
	}
	return a.chatView.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\nKeys:\n")
	for _, group := range a.keymap.FullHelp() {
		for _, binding := range group {
			h := binding.Help()
			fmt.Fprintf(&b, "  %-10s %s\n", h.Key, h.Desc)
		}
	}
	b.WriteString(`
Commands:
  /evaluate <A-F>            evaluate one rubric section and record its score
  /mode auto|answer|evaluate set the query mode
  /upload [--replace] <file> upload a business plan
  /clear                     start a new conversation
  /quit                      exit

Rubric sections:
`)
	for _, sec := range domain.Rubric() {
		fmt.Fprintf(&b, "  %s  %s\n", sec.Letter, sec.Title)
	}
	b.WriteString("\n")
	b.WriteString(a.styles.Help.Render("[esc] back to chat"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// ChatView returns the conversation view.
func (a *App) ChatView() *chat.View {
	return a.chatView
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}
