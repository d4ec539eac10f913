package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/api"
	"github.com/pdfquiz/pdfquiz/internal/config"
	"github.com/pdfquiz/pdfquiz/internal/extract"
	"github.com/pdfquiz/pdfquiz/internal/quizgen"
)

var generateCmd = &cobra.Command{
	Use:   "generate <file.pdf>",
	Short: "Generate a quiz for a PDF and print it",
	Long: "Extracts the PDF, generates one question set and prints it as the " +
		"/api/generate response body. With --play the quiz is asked on stdin instead.",
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().String("backend", "", "PDF backend: native or poppler")
	generateCmd.Flags().String("server", "", "Use a running pdfquiz server (overrides PDFQUIZ_SERVER)")
	generateCmd.Flags().Bool("play", false, "Answer the questions on stdin and print the score")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(cmd)
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Extractor = v
	}
	if v, _ := cmd.Flags().GetString("server"); v != "" {
		cfg.ServerURL = v
	}
	play, _ := cmd.Flags().GetBool("play")

	ctx := cmd.Context()
	log := config.NewLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	st, _, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	x, gen, err := quizBackends(ctx, cfg, st.Events(), log)
	if err != nil {
		return err
	}

	pages, err := extract.ExtractFile(ctx, x, args[0])
	if err != nil {
		return extractFailure(err)
	}

	fmt.Fprintf(os.Stderr, "Generating questions from %d pages...\n", len(pages))
	res, err := gen.Generate(ctx, pages)
	if err != nil {
		var gerr *quizgen.GenerationError
		if errors.As(err, &gerr) {
			return fmt.Errorf("%s: %w", gerr.UserMessage(), err)
		}
		return err
	}

	if play {
		return playQuiz(&res.Set)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(api.GenerateResponse{Result: res.Set, Usage: res.Usage})
}

// playQuiz asks every question on stdin, then grades the whole set.
func playQuiz(set *quizgen.QuestionSet) error {
	scanner := bufio.NewScanner(os.Stdin)
	answers := make(map[int]string, len(set.Questions))
	total := len(set.Questions)

	for i, q := range set.Questions {
		fmt.Printf("── 문제 %d/%d ──\n", i+1, total)
		fmt.Println(q.Prompt)
		if q.Kind == quizgen.KindMultipleChoice {
			for j, opt := range q.Options {
				if j >= len(quizgen.OptionLabels) {
					break
				}
				fmt.Printf("  %s) %s\n", quizgen.OptionLabels[j], opt)
			}
		}

		fmt.Print("\n답: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answers[i] = strings.TrimSpace(scanner.Text())
		fmt.Println()
	}

	score, correct := quizgen.Grade(set, answers)
	for i, q := range set.Questions {
		if correct[i] {
			fmt.Printf("\033[32m✓ %d.\033[0m %s\n", i+1, q.Answer)
		} else {
			fmt.Printf("\033[31m✗ %d.\033[0m 정답: %s\n", i+1, q.Answer)
		}
		fmt.Printf("   해설: %s\n", q.Explanation)
	}

	fmt.Printf("\n── 점수: %d/%d ──\n", score, total)
	return nil
}
