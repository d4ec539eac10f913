package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/api"
	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract <file.pdf>",
	Short: "Print the marked page texts of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().String("backend", "", "PDF backend: native or poppler")
	extractCmd.Flags().Bool("json", false, "Print the pages as the /api/extract response body")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Extractor = v
	}
	asJSON, _ := cmd.Flags().GetBool("json")

	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	x, err := newExtractor(cfg.Extractor, log)
	if err != nil {
		return err
	}

	pages, err := extract.ExtractFile(cmd.Context(), x, args[0])
	if err != nil {
		return extractFailure(err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(api.ExtractResponse{Pages: pages})
	}

	fmt.Println(strings.Join(pages, "\n\n"))
	if info, err := os.Stat(args[0]); err == nil {
		fmt.Fprintf(os.Stderr, "\n%s pages from %s (%s)\n",
			humanize.Comma(int64(len(pages))), args[0], humanize.Bytes(uint64(info.Size())))
	}
	return nil
}

// extractFailure pairs the user-facing message with the cause.
func extractFailure(err error) error {
	if errors.Is(err, extract.ErrNotPDF) {
		return fmt.Errorf("%s: %w", api.MsgNotPDF, err)
	}
	return fmt.Errorf("%s: %w", extract.UserMessage(err), err)
}
