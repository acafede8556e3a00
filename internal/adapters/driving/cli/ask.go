package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask about the rulebook or your plan",
	Long: `Ask a question answered from the rulebook and your uploaded plan.

Modes:
  auto     - evaluate when the question asks for an evaluation, otherwise answer
  answer   - answer from the most relevant parts of the plan
  evaluate - review the whole uploaded plan against the rulebook`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <section>",
	Short: "Evaluate one rubric section (A-F) of your plan",
	Long: `Evaluate one top-level rubric section of the uploaded plan.

The report ends with a section score, which is recorded in the directory.`,
	Args: cobra.ExactArgs(1),
	RunE: runEvaluate,
}

func init() {
	askCmd.Flags().StringP("email", "e", "", "your registered email address")
	askCmd.Flags().StringP("mode", "m", "auto", "query mode: auto, answer or evaluate")
	askCmd.Flags().Bool("json", false, "print the response as JSON")
	_ = askCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(askCmd)

	evaluateCmd.Flags().StringP("email", "e", "", "your registered email address")
	_ = evaluateCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(evaluateCmd)
}

// chatOutput is the JSON form of a chat response.
type chatOutput struct {
	Answer         string   `json:"answer"`
	Mode           string   `json:"mode"`
	Score          *int     `json:"score,omitempty"`
	ScoreSaved     bool     `json:"scoreSaved,omitempty"`
	Warnings       []string `json:"warnings,omitempty"`
	GuidelineCount int      `json:"guidelineCount"`
	UserChunkCount int      `json:"userChunkCount"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return unavailable("chat")
	}

	email, _ := cmd.Flags().GetString("email")   //nolint:errcheck // flag is always registered
	modeFlag, _ := cmd.Flags().GetString("mode") //nolint:errcheck // flag is always registered
	asJSON, _ := cmd.Flags().GetBool("json")     //nolint:errcheck // flag is always registered

	mode, err := domain.ParseQueryMode(modeFlag)
	if err != nil {
		return err
	}

	req := domain.ChatRequest{
		Identity: email,
		Messages: []domain.Message{{Role: domain.RoleUser, Content: args[0]}},
		Mode:     mode,
	}

	onToken, streamed := streamer(cmd.OutOrStdout(), asJSON)
	resp, err := chatService.Ask(cmd.Context(), req, onToken)
	if err != nil {
		return err
	}

	return printChatResponse(cmd, resp, streamed, asJSON)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return unavailable("chat")
	}

	email, _ := cmd.Flags().GetString("email") //nolint:errcheck // flag is always registered

	letter, err := domain.ParseSectionLetter(args[0])
	if err != nil {
		return err
	}

	onToken, streamed := streamer(cmd.OutOrStdout(), false)
	resp, err := chatService.EvaluateSection(cmd.Context(), email, letter, onToken)
	if err != nil {
		return err
	}

	return printChatResponse(cmd, resp, streamed, false)
}

// streamer returns a token callback when out is an interactive terminal.
func streamer(out io.Writer, asJSON bool) (func(string), bool) {
	if asJSON || !isTerminal(out) {
		return nil, false
	}
	return func(token string) {
		fmt.Fprint(out, token)
	}, true
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printChatResponse(cmd *cobra.Command, resp *domain.ChatResponse, streamed, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(chatOutput{
			Answer:         resp.Answer,
			Mode:           resp.Mode.String(),
			Score:          resp.Score,
			ScoreSaved:     resp.ScoreSaved,
			Warnings:       resp.Warnings,
			GuidelineCount: resp.GuidelineCount,
			UserChunkCount: resp.UserChunkCount,
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("encode response: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if streamed {
		cmd.Println()
	} else {
		cmd.Println(resp.Answer)
	}

	if resp.Score != nil {
		saved := ""
		if resp.ScoreSaved {
			saved = " (saved)"
		}
		cmd.Printf("\nScore: %d/100%s\n", *resp.Score, saved)
	}
	for _, w := range resp.Warnings {
		cmd.PrintErrf("Warning: %s\n", w)
	}
	return nil
}
