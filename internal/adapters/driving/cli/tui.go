package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/adapters/driving/tui"
	"github.com/custodia-labs/plancheck/internal/core/domain"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive chat",
	Long: `Launch the interactive terminal chat for plancheck.

Answers stream as they are written. Type /evaluate A-F to evaluate a section
of your uploaded plan, /upload <file> to upload one, or press F1 for help.

Controls:
  Enter   - Send
  Esc     - Cancel the current answer
  PgUp/Dn - Scroll
  Ctrl+L  - New conversation
  Ctrl+C  - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringP("email", "e", "", "your registered email address")
	tuiCmd.Flags().StringP("mode", "m", "auto", "initial query mode: auto, answer or evaluate")
	_ = tuiCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	if chatService == nil {
		return unavailable("chat")
	}

	email, _ := cmd.Flags().GetString("email")   //nolint:errcheck // flag is always registered
	modeFlag, _ := cmd.Flags().GetString("mode") //nolint:errcheck // flag is always registered

	mode, err := domain.ParseQueryMode(modeFlag)
	if err != nil {
		return err
	}

	app, err := tui.NewApp(&tui.Ports{
		Chat:      chatService,
		Upload:    uploadService,
		Guideline: guidelineService,
	}, email)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context()).WithMode(mode)

	watchPrompts(cmd.Context())

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
