// Package cli provides the plancheck command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/core/ports/driving"
	"github.com/custodia-labs/plancheck/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var (
	chatService         driving.ChatService
	uploadService       driving.UploadService
	guidelineService    driving.GuidelineService
	registrationService driving.RegistrationService
	scoreService        driving.ScoreService
	settingsService     driving.SettingsService

	// setupErr explains why services are missing, typically a configuration error.
	setupErr error

	// promptWatcher reloads prompt templates in long-running commands.
	promptWatcher PromptWatcher
)

// PromptWatcher watches prompt template files for edits.
type PromptWatcher interface {
	Start(ctx context.Context) (<-chan string, error)
}

// Services groups the driving ports used by the commands. Nil fields leave
// the corresponding commands unavailable.
type Services struct {
	Chat         driving.ChatService
	Upload       driving.UploadService
	Guideline    driving.GuidelineService
	Registration driving.RegistrationService
	Score        driving.ScoreService
	Settings     driving.SettingsService
}

var rootCmd = &cobra.Command{
	Use:   "plancheck",
	Short: "Business plan rulebook assistant",
	Long: `plancheck answers questions about the business plan rulebook and
evaluates uploaded plans against it, section by section.

Index the rulebook once with 'plancheck guideline index', upload a plan with
'plancheck upload', then ask questions or request evaluations.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		verbose, _ := cmd.Flags().GetBool("verbose") //nolint:errcheck // flag is always registered
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print retrieval and indexing details to stderr")
}

// SetVersion sets the version reported by 'plancheck version'.
func SetVersion(v string) {
	version = v
}

// SetServices installs the services used by the commands.
func SetServices(s Services) {
	chatService = s.Chat
	uploadService = s.Upload
	guidelineService = s.Guideline
	registrationService = s.Registration
	scoreService = s.Score
	settingsService = s.Settings
}

// SetSetupError records why some services could not be built. Commands that
// need a missing service return this error.
func SetSetupError(err error) {
	setupErr = err
}

// SetPromptWatcher enables prompt hot reload for 'mcp serve' and 'tui'.
func SetPromptWatcher(w PromptWatcher) {
	promptWatcher = w
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// unavailable returns the error for a command whose service is missing.
func unavailable(name string) error {
	if setupErr != nil {
		return fmt.Errorf("%s unavailable: %w", name, setupErr)
	}
	return errors.New(name + " service not configured")
}

// watchPrompts starts the prompt watcher, if any, until ctx is done.
func watchPrompts(ctx context.Context) {
	if promptWatcher == nil {
		return
	}
	changes, err := promptWatcher.Start(ctx)
	if err != nil {
		logger.Warn("prompt hot reload disabled: %v", err)
		return
	}
	go func() {
		for name := range changes {
			logger.Info("reloaded prompt %s", name)
		}
	}()
}
