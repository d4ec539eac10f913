package cmd

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show quiz statistics and recent quiz activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := context.Background()
		stats, err := s.Events().QuizStats(ctx)
		if err != nil {
			return fmt.Errorf("query stats: %w", err)
		}

		fmt.Println("Quiz Statistics")
		fmt.Println(rule(40))
		fmt.Printf("%-20s  %s\n", "Sessions", humanize.Comma(int64(stats.Sessions)))
		fmt.Printf("%-20s  %s\n", "Quizzes generated", humanize.Comma(int64(stats.Generated)))
		fmt.Printf("%-20s  %s\n", "Generation failures", humanize.Comma(int64(stats.Failed)))
		fmt.Printf("%-20s  %s\n", "Quizzes graded", humanize.Comma(int64(stats.Graded)))
		if stats.Graded > 0 {
			fmt.Printf("%-20s  %.1f\n", "Average score", stats.AvgScore)
			fmt.Printf("%-20s  %d\n", "Best score", stats.BestScore)
		}

		events, err := s.Events().QueryQuizEvents(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query quiz events: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		fmt.Println()
		fmt.Println("Recent Activity")
		fmt.Println(rule(72))
		for _, e := range events {
			fmt.Printf("%-16s  %-9s  %-24s  %s\n",
				humanize.Time(e.Timestamp), e.Action, truncate(e.SourceName, 24), eventDetail(e))
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().IntP("limit", "n", 10, "Number of recent quiz events to show")
}

func eventDetail(e store.QuizEvent) string {
	switch e.Action {
	case store.QuizGenerated:
		return fmt.Sprintf("%d questions from %d pages", e.QuestionCount, e.PageCount)
	case store.QuizGraded:
		return fmt.Sprintf("score %d/%d", e.Score, e.QuestionCount)
	case store.QuizFailed:
		return e.ErrorMessage
	default:
		return ""
	}
}
