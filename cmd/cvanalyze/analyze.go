package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/muhammadolammi/musecareer/internal/events"
	"github.com/muhammadolammi/musecareer/internal/extract"
)

var (
	analyzeFile      string
	analyzeInterests string
	analyzeMime      string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CV file and print the result as JSON",
	Long: `Runs the same pipeline as POST /analyze on a local file: text extraction,
prompt composition, one model call and JSON extraction. The media type is
taken from --mime or guessed from the file extension.`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "path to the CV (pdf, docx, txt, json)")
	analyzeCmd.Flags().StringVarP(&analyzeInterests, "interests", "i", "", "free-text career interests")
	analyzeCmd.Flags().StringVar(&analyzeMime, "mime", "", "media type of the file, overrides the extension")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", analyzeFile, err)
	}
	mediaType := analyzeMime
	if mediaType == "" {
		mediaType = extract.MediaTypeFromName(analyzeFile)
	}

	ctx := context.Background()
	analyzer, err := buildAnalyzer(ctx, cfg, events.Noop{}, log)
	if err != nil {
		return fmt.Errorf("failed to create completion provider: %w", err)
	}

	result, err := analyzer.Analyze(ctx, uuid.NewString(), &extract.RawDocument{Bytes: data, MediaType: mediaType}, analyzeInterests)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(out))
	return nil
}
