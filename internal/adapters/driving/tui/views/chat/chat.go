// Package chat provides the conversation view of the TUI.
package chat

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/plancheck/internal/core/domain"
	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
)

const (
	inputHeight = 3
	// header, spinner line, input border and status bar
	chromeHeight = 1 + 1 + 2 + 1
	minViewport  = 3
)

const welcome = "Ask about the rulebook or your plan. " +
	"Type /evaluate A-F to evaluate a section or /help for all commands."

// entry is one rendered block of the transcript.
type entry struct {
	role     domain.MessageRole
	text     string
	score    *int
	saved    bool
	warnings []string
	err      error
}

// View is the conversation view: transcript, input box and status bar.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	chat   driving.ChatService
	upload driving.UploadService
	ctx    context.Context

	identity string
	mode     domain.QueryMode

	input    textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	status   *status.Bar

	history    []domain.Message
	transcript []entry

	turn      int
	busy      bool
	streaming strings.Builder
	stream    <-chan tea.Msg
	cancel    context.CancelFunc

	width  int
	height int
}

// NewView creates a chat view for identity. upload may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	chat driving.ChatService,
	upload driving.UploadService,
	identity string,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask a question..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.SetHeight(inputHeight)
	ta.Focus()

	bar := status.NewBar(s, km)
	bar.SetIdentity(identity)

	v := &View{
		styles:   s,
		keymap:   km,
		chat:     chat,
		upload:   upload,
		ctx:      context.Background(),
		identity: identity,
		mode:     domain.QueryModeAuto,
		input:    ta,
		viewport: viewport.New(80, 20),
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		status:   bar,
	}
	v.addSystem(welcome)
	return v
}

// SetContext sets the parent context of chat turns.
func (v *View) SetContext(ctx context.Context) {
	v.ctx = ctx
}

// SetMode sets the query mode used for questions.
func (v *View) SetMode(mode domain.QueryMode) {
	v.mode = mode
	v.status.SetMode(mode.String())
}

// Mode returns the current query mode.
func (v *View) Mode() domain.QueryMode {
	return v.mode
}

// Busy reports whether a turn is in progress.
func (v *View) Busy() bool {
	return v.busy
}

// History returns the conversation sent with each question.
func (v *View) History() []domain.Message {
	return v.history
}

// SetDimensions sets the terminal dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	v.input.SetWidth(width - 2)
	v.viewport.Width = width
	v.viewport.Height = max(height-inputHeight-chromeHeight, minViewport)
	v.status.SetWidth(width)
	v.refresh()
}

// Init starts the cursor blink.
func (v *View) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages for the view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.TokenReceived:
		if msg.Turn != v.turn || !v.busy {
			return v, nil
		}
		v.streaming.WriteString(msg.Token)
		v.refresh()
		return v, waitForMsg(v.stream)

	case messages.ChatCompleted:
		if msg.Turn != v.turn || !v.busy {
			return v, nil
		}
		v.finishTurn(msg)
		return v, nil

	case messages.UploadCompleted:
		v.status.SetState(status.StateReady)
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.addSystem(fmt.Sprintf("Uploaded %s: %d chunks indexed.", msg.Result.FileName, msg.Result.ChunkCount))
		return v, nil

	case messages.GuidelineStatusLoaded:
		switch {
		case msg.Err != nil:
			v.addSystem(fmt.Sprintf("Rulebook status unavailable: %v", msg.Err))
		case !msg.Status.Exists:
			v.addSystem("The rulebook is not indexed yet. Run 'plancheck guideline index' for rulebook context.")
		default:
			v.status.SetMessage(fmt.Sprintf("%d rulebook sections", msg.Status.PointsCount))
		}
		return v, nil

	case spinner.TickMsg:
		if !v.busy {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	keyStr := msg.String()

	switch {
	case keymap.Matches(keyStr, v.keymap.Cancel):
		if v.busy {
			v.CancelTurn()
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.ScrollUp), keymap.Matches(keyStr, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.viewport, cmd = v.viewport.Update(msg)
		return v, cmd

	case keymap.Matches(keyStr, v.keymap.Clear):
		if !v.busy {
			v.reset()
		}
		return v, nil

	case keymap.Matches(keyStr, v.keymap.Send):
		if v.busy {
			return v, nil
		}
		text := strings.TrimSpace(v.input.Value())
		v.input.Reset()
		return v, v.Submit(text)
	}

	if v.busy {
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// Submit handles a line of input: a slash command or a question.
func (v *View) Submit(text string) tea.Cmd {
	if text == "" {
		return nil
	}

	name, args, isCommand := parseCommand(text)
	if !isCommand {
		return v.startAsk(text)
	}

	switch name {
	case "help":
		return func() tea.Msg { return messages.ViewChanged{View: messages.ViewHelp} }

	case "quit", "exit":
		return func() tea.Msg { return messages.Quit{} }

	case "clear":
		v.reset()
		return nil

	case "mode":
		if len(args) != 1 {
			v.addSystem("Current mode: " + v.mode.String() + ". Usage: /mode auto|answer|evaluate")
			return nil
		}
		mode, err := domain.ParseQueryMode(args[0])
		if err != nil {
			v.fail(err)
			return nil
		}
		v.SetMode(mode)
		v.addSystem("Mode set to " + mode.String() + ".")
		return nil

	case "evaluate":
		if len(args) != 1 {
			v.addSystem("Usage: /evaluate <A-F>")
			return nil
		}
		letter, err := domain.ParseSectionLetter(args[0])
		if err != nil {
			v.fail(err)
			return nil
		}
		return v.startEvaluate(letter)

	case "upload":
		return v.startUpload(args)

	default:
		v.addSystem(fmt.Sprintf("Unknown command /%s. Type /help for commands.", name))
		return nil
	}
}

// parseCommand splits "/name arg..." input.
func parseCommand(text string) (string, []string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}
	fields := strings.Fields(strings.TrimPrefix(text, "/"))
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

func (v *View) startAsk(question string) tea.Cmd {
	v.history = append(v.history, domain.Message{Role: domain.RoleUser, Content: question})
	v.transcript = append(v.transcript, entry{role: domain.RoleUser, text: question})

	req := domain.ChatRequest{
		Identity: v.identity,
		Messages: append([]domain.Message(nil), v.history...),
		Mode:     v.mode,
	}
	return v.startTurn(func(ctx context.Context, onToken func(string)) (*domain.ChatResponse, error) {
		return v.chat.Ask(ctx, req, onToken)
	})
}

func (v *View) startEvaluate(letter domain.SectionLetter) tea.Cmd {
	label := "Evaluate section " + string(letter)
	if sec, ok := letter.Section(); ok {
		label += ": " + sec.Title
	}
	v.transcript = append(v.transcript, entry{role: domain.RoleUser, text: label})

	identity := v.identity
	return v.startTurn(func(ctx context.Context, onToken func(string)) (*domain.ChatResponse, error) {
		return v.chat.EvaluateSection(ctx, identity, letter, onToken)
	})
}

// startTurn runs call in the background and streams its tokens as messages.
func (v *View) startTurn(
	call func(ctx context.Context, onToken func(string)) (*domain.ChatResponse, error),
) tea.Cmd {
	v.turn++
	turn := v.turn
	v.busy = true
	v.streaming.Reset()
	v.status.SetState(status.StateThinking)

	ctx, cancel := context.WithCancel(v.ctx)
	v.cancel = cancel

	ch := make(chan tea.Msg, 64)
	v.stream = ch

	go func() {
		defer close(ch)
		send := func(msg tea.Msg) {
			select {
			case ch <- msg:
			case <-ctx.Done():
			}
		}
		resp, err := call(ctx, func(token string) {
			send(messages.TokenReceived{Turn: turn, Token: token})
		})
		send(messages.ChatCompleted{Turn: turn, Response: resp, Err: err})
	}()

	v.refresh()
	return tea.Batch(v.spinner.Tick, waitForMsg(ch))
}

// waitForMsg reads the next message of a turn.
func waitForMsg(ch <-chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *View) finishTurn(msg messages.ChatCompleted) {
	v.endTurn()

	if msg.Err != nil {
		v.fail(msg.Err)
		return
	}

	resp := msg.Response
	answer := resp.Answer
	if answer == "" {
		answer = v.streaming.String()
	}
	v.streaming.Reset()

	v.transcript = append(v.transcript, entry{
		role:     domain.RoleAssistant,
		text:     answer,
		score:    resp.Score,
		saved:    resp.ScoreSaved,
		warnings: resp.Warnings,
	})
	if len(v.history) > 0 && v.history[len(v.history)-1].Role == domain.RoleUser {
		v.history = append(v.history, domain.Message{Role: domain.RoleAssistant, Content: answer})
	}
	v.status.SetState(status.StateReady)
	v.refresh()
}

// CancelTurn abandons the turn in progress, keeping what has streamed so far.
func (v *View) CancelTurn() {
	if !v.busy {
		return
	}
	partial := v.streaming.String()
	v.endTurn()
	v.streaming.Reset()

	if partial != "" {
		v.transcript = append(v.transcript, entry{role: domain.RoleAssistant, text: partial + " …"})
	}
	// Drop the unanswered question so the next turn starts clean.
	if len(v.history) > 0 && v.history[len(v.history)-1].Role == domain.RoleUser {
		v.history = v.history[:len(v.history)-1]
	}
	v.addSystem("Cancelled.")
	v.status.SetState(status.StateReady)
}

func (v *View) endTurn() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.busy = false
	v.stream = nil
}

func (v *View) startUpload(args []string) tea.Cmd {
	if v.upload == nil {
		v.addSystem("Uploads are not available in this session.")
		return nil
	}

	opts := domain.UploadOptions{}
	var path string
	for _, a := range args {
		if a == "--replace" || a == "-r" {
			opts.Replace = true
			continue
		}
		path = a
	}
	if path == "" {
		v.addSystem("Usage: /upload [--replace] <file>")
		return nil
	}

	v.status.SetState(status.StateUploading)
	ctx, identity, upload := v.ctx, v.identity, v.upload
	return func() tea.Msg {
		content, err := os.ReadFile(path)
		if err != nil {
			return messages.UploadCompleted{Err: fmt.Errorf("read %s: %w", path, err)}
		}
		result, err := upload.Upload(ctx, identity, &domain.RawDocument{
			FileName: filepath.Base(path),
			MIMEType: mime.TypeByExtension(filepath.Ext(path)),
			Content:  content,
		}, opts)
		return messages.UploadCompleted{Result: result, Err: err}
	}
}

func (v *View) reset() {
	v.history = nil
	v.transcript = nil
	v.streaming.Reset()
	v.status.SetMessage("")
	v.status.SetState(status.StateReady)
	v.addSystem(welcome)
}

func (v *View) addSystem(text string) {
	v.transcript = append(v.transcript, entry{role: domain.RoleSystem, text: text})
	v.refresh()
}

func (v *View) fail(err error) {
	v.transcript = append(v.transcript, entry{role: domain.RoleSystem, err: err})
	v.status.SetState(status.StateError)
	v.status.SetMessage(err.Error())
	v.refresh()
}

// refresh re-renders the transcript into the viewport.
func (v *View) refresh() {
	v.viewport.SetContent(v.renderTranscript())
	v.viewport.GotoBottom()
}

func (v *View) renderTranscript() string {
	width := v.viewport.Width - 2
	if width < 20 {
		width = 20
	}
	wrap := lipgloss.NewStyle().Width(width)

	var b strings.Builder
	for _, e := range v.transcript {
		switch {
		case e.err != nil:
			b.WriteString(v.styles.Error.Render(wrap.Render("Error: " + e.err.Error())))
		case e.role == domain.RoleUser:
			b.WriteString(v.styles.UserLabel.Render("You"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(e.text))
		case e.role == domain.RoleAssistant:
			b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
			b.WriteString("\n")
			b.WriteString(wrap.Render(e.text))
			if e.score != nil {
				line := fmt.Sprintf("Score: %d/100", *e.score)
				if e.saved {
					line += " (saved)"
				}
				b.WriteString("\n")
				b.WriteString(v.styles.Score.Render(line))
			}
			for _, w := range e.warnings {
				b.WriteString("\n")
				b.WriteString(v.styles.Warning.Render(wrap.Render("Warning: " + w)))
			}
		default:
			b.WriteString(v.styles.Muted.Render(wrap.Render(e.text)))
		}
		b.WriteString("\n\n")
	}

	if v.busy && v.streaming.Len() > 0 {
		b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		b.WriteString("\n")
		b.WriteString(wrap.Render(v.streaming.String()))
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	header := v.styles.Title.Render("plancheck") + " " + v.styles.Muted.Render("business plan assistant")

	activity := ""
	if v.busy {
		activity = v.spinner.View() + " " + v.styles.Muted.Render("thinking")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		v.viewport.View(),
		activity,
		v.styles.Input.Render(v.input.View()),
		v.status.View(),
	)
}
