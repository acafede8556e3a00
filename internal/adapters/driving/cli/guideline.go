package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

var guidelineCmd = &cobra.Command{
	Use:   "guideline",
	Short: "Manage the rulebook index",
}

var guidelineIndexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Index the rulebook",
	Long: `Parse the rulebook and index one vector per section.

The file defaults to ` + domain.DefaultGuidelineFile + ` in the current directory.
Supported formats are .docx, .pdf, .txt and .md.

Use --recreate to drop the existing rulebook collection first.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGuidelineIndex,
}

var guidelineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the rulebook is indexed",
	Args:  cobra.NoArgs,
	RunE:  runGuidelineStatus,
}

func init() {
	guidelineIndexCmd.Flags().Bool("recreate", false, "drop the rulebook collection before indexing")
	guidelineCmd.AddCommand(guidelineIndexCmd)
	guidelineCmd.AddCommand(guidelineStatusCmd)
	rootCmd.AddCommand(guidelineCmd)
}

func runGuidelineIndex(cmd *cobra.Command, args []string) error {
	if guidelineService == nil {
		return unavailable("guideline")
	}

	path := domain.DefaultGuidelineFile
	if len(args) == 1 {
		path = args[0]
	}
	recreate, _ := cmd.Flags().GetBool("recreate") //nolint:errcheck // flag is always registered

	file, err := readRawDocument(path)
	if err != nil {
		return err
	}

	cmd.Printf("Indexing rulebook %s...\n", path)
	result, err := guidelineService.Index(cmd.Context(), file, domain.GuidelineIndexOptions{Recreate: recreate})
	if err != nil {
		return fmt.Errorf("index rulebook: %w", err)
	}

	cmd.Printf("Indexed %d sections into %s\n", result.SectionCount, result.CollectionName)
	if len(result.Codes) > 0 {
		cmd.Printf("Sections: %s\n", strings.Join(result.Codes, ", "))
	}
	return nil
}

func runGuidelineStatus(cmd *cobra.Command, _ []string) error {
	if guidelineService == nil {
		return unavailable("guideline")
	}

	status, err := guidelineService.Status(cmd.Context())
	if err != nil {
		return fmt.Errorf("rulebook status: %w", err)
	}

	cmd.Printf("Collection: %s\n", status.CollectionName)
	if !status.Exists {
		cmd.Println("Status: not indexed")
		cmd.Println("Run 'plancheck guideline index' to index the rulebook.")
		return nil
	}
	cmd.Println("Status: indexed")
	cmd.Printf("Sections: %d\n", status.PointsCount)
	cmd.Printf("Vector size: %d\n", status.VectorSize)
	return nil
}
