package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a user in the directory",
	Args:  cobra.NoArgs,
	RunE:  runRegister,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether an email is registered",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Record a section score",
	Long: `Record a section score (0-100) for a user.

Scores are normally recorded by 'plancheck evaluate'. Use this command to
correct or enter a score by hand.`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

func init() {
	registerCmd.Flags().String("first", "", "first name")
	registerCmd.Flags().String("last", "", "last name")
	registerCmd.Flags().StringP("email", "e", "", "email address")
	_ = registerCmd.MarkFlagRequired("first")
	_ = registerCmd.MarkFlagRequired("last")
	_ = registerCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(registerCmd)

	checkCmd.Flags().StringP("email", "e", "", "email address")
	_ = checkCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(checkCmd)

	scoreCmd.Flags().StringP("email", "e", "", "email address")
	scoreCmd.Flags().StringP("section", "s", "", "rubric section letter (A-F)")
	scoreCmd.Flags().Int("score", 0, "score between 0 and 100")
	_ = scoreCmd.MarkFlagRequired("email")
	_ = scoreCmd.MarkFlagRequired("section")
	_ = scoreCmd.MarkFlagRequired("score")
	rootCmd.AddCommand(scoreCmd)
}

func runRegister(cmd *cobra.Command, _ []string) error {
	if registrationService == nil {
		return unavailable("registration")
	}

	first, _ := cmd.Flags().GetString("first") //nolint:errcheck // flag is always registered
	last, _ := cmd.Flags().GetString("last")   //nolint:errcheck // flag is always registered
	email, _ := cmd.Flags().GetString("email") //nolint:errcheck // flag is always registered

	err := registrationService.Register(cmd.Context(), domain.Registration{
		FirstName: first,
		LastName:  last,
		Email:     email,
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("%s is already registered", email)
	}
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	cmd.Printf("Registered %s %s <%s>\n", first, last, domain.NormalizeEmail(email))
	return nil
}

func runCheck(cmd *cobra.Command, _ []string) error {
	if registrationService == nil {
		return unavailable("registration")
	}

	email, _ := cmd.Flags().GetString("email") //nolint:errcheck // flag is always registered

	member, err := registrationService.Check(cmd.Context(), email)
	if err != nil {
		return fmt.Errorf("check registration: %w", err)
	}
	if !member.Exists {
		cmd.Printf("%s is not registered\n", email)
		return nil
	}
	cmd.Printf("%s is registered as %s\n", email, member.Name)
	return nil
}

func runScore(cmd *cobra.Command, _ []string) error {
	if scoreService == nil {
		return unavailable("score")
	}

	email, _ := cmd.Flags().GetString("email")     //nolint:errcheck // flag is always registered
	section, _ := cmd.Flags().GetString("section") //nolint:errcheck // flag is always registered
	score, _ := cmd.Flags().GetInt("score")        //nolint:errcheck // flag is always registered

	letter, err := domain.ParseSectionLetter(section)
	if err != nil {
		return err
	}

	if err := scoreService.Save(cmd.Context(), domain.ScoreEntry{
		Email:   email,
		Section: letter,
		Score:   score,
	}); err != nil {
		return fmt.Errorf("save score: %w", err)
	}

	cmd.Printf("Recorded %d/100 for section %s\n", score, letter)
	return nil
}
