package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/plancheck/internal/core/domain"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload a business plan",
	Long: `Extract, chunk and index a business plan for later questions and evaluations.

Re-uploads add to what is already indexed. Use --replace to start over.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var uploadsCmd = &cobra.Command{
	Use:   "uploads",
	Short: "List previous uploads",
	Args:  cobra.NoArgs,
	RunE:  runUploads,
}

func init() {
	uploadCmd.Flags().StringP("email", "e", "", "your registered email address")
	uploadCmd.Flags().Bool("replace", false, "drop previously uploaded content first")
	_ = uploadCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(uploadCmd)

	uploadsCmd.Flags().StringP("email", "e", "", "your registered email address")
	_ = uploadsCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(uploadsCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if uploadService == nil {
		return unavailable("upload")
	}

	email, _ := cmd.Flags().GetString("email")   //nolint:errcheck // flag is always registered
	replace, _ := cmd.Flags().GetBool("replace") //nolint:errcheck // flag is always registered

	file, err := readRawDocument(args[0])
	if err != nil {
		return err
	}

	result, err := uploadService.Upload(cmd.Context(), email, file, domain.UploadOptions{Replace: replace})
	if err != nil {
		return fmt.Errorf("upload %s: %w", file.FileName, err)
	}

	cmd.Printf("Uploaded %s: %d chunks indexed\n", result.FileName, result.ChunkCount)
	cmd.Printf("Upload ID: %s\n", result.UploadID)
	return nil
}

func runUploads(cmd *cobra.Command, _ []string) error {
	if uploadService == nil {
		return unavailable("upload")
	}

	email, _ := cmd.Flags().GetString("email") //nolint:errcheck // flag is always registered

	records, err := uploadService.History(cmd.Context(), email)
	if err != nil {
		return fmt.Errorf("upload history: %w", err)
	}
	if len(records) == 0 {
		cmd.Println("No uploads found.")
		return nil
	}

	for _, r := range records {
		replaced := ""
		if r.Replaced {
			replaced = " (replaced)"
		}
		cmd.Printf("%s  %-30s %4d chunks%s  [%s]\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.FileName, r.ChunkCount, replaced, r.ID)
	}
	return nil
}

// readRawDocument loads a file for normalisation.
func readRawDocument(path string) (*domain.RawDocument, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.RawDocument{
		FileName: filepath.Base(path),
		MIMEType: mime.TypeByExtension(filepath.Ext(path)),
		Content:  content,
	}, nil
}
