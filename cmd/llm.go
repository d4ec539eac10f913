package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdfquiz/pdfquiz/internal/llm"
	"github.com/pdfquiz/pdfquiz/internal/store"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model calls",
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model calls",
	RunE:  runLLMList,
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the full request and raw response of one model call",
	Args:  cobra.ExactArgs(1),
	RunE:  runLLMView,
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show token usage by purpose and estimated cost by model",
	RunE:  runLLMStats,
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Only show calls with this purpose (e.g. quiz-gen)")
	llmListCmd.Flags().StringP("session", "s", "", "Only show calls made for this quiz session id")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}

func runLLMList(cmd *cobra.Command, args []string) error {
	opts := store.QueryOpts{}
	opts.Limit, _ = cmd.Flags().GetInt("limit")
	opts.Purpose, _ = cmd.Flags().GetString("purpose")
	opts.SessionID, _ = cmd.Flags().GetString("session")

	s, _, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	events, err := s.Events().QueryLLMEvents(context.Background(), opts)
	if err != nil {
		return fmt.Errorf("query events: %w", err)
	}
	if len(events) == 0 {
		fmt.Println("No model calls recorded.")
		return nil
	}

	const row = "%-5v  %-16v  %-10v  %-28v  %7v  %7v  %7v  %v\n"
	fmt.Printf(row, "ID", "When", "Purpose", "Model", "In", "Out", "Ms", "OK")
	fmt.Println(rule(96))
	for _, e := range events {
		fmt.Printf(row,
			e.ID,
			humanize.Time(e.Timestamp),
			truncate(e.Purpose, 10),
			truncate(e.Model, 28),
			humanize.Comma(int64(e.InputTokens)),
			humanize.Comma(int64(e.OutputTokens)),
			e.LatencyMs,
			mark(e.Success),
		)
	}
	return nil
}

func runLLMView(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid ID %q: %w", args[0], err)
	}

	s, _, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	e, err := s.Events().GetLLMEvent(context.Background(), id)
	if err != nil {
		return fmt.Errorf("get event: %w", err)
	}
	if e == nil {
		return fmt.Errorf("event %d not found", id)
	}

	field := func(name string, v any) { fmt.Printf("%-10s %v\n", name+":", v) }
	field("ID", e.ID)
	field("Time", fmt.Sprintf("%s (%s)", e.Timestamp.Local().Format("2006-01-02 15:04:05"), humanize.Time(e.Timestamp)))
	if e.SessionID != "" {
		field("Session", e.SessionID)
	}
	field("Provider", e.Provider)
	field("Model", e.Model)
	field("Purpose", e.Purpose)
	field("Tokens", fmt.Sprintf("%s in / %s out",
		humanize.Comma(int64(e.InputTokens)), humanize.Comma(int64(e.OutputTokens))))
	field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
	field("Success", e.Success)
	if e.ErrorMessage != "" {
		field("Error", e.ErrorMessage)
	}

	section("REQUEST", e.RequestBody)
	section("RESPONSE", e.ResponseBody)
	return nil
}

// section prints a captured body, indenting it when it is JSON.
func section(title, body string) {
	fmt.Println()
	fmt.Println(rule(60))
	fmt.Println(title)
	fmt.Println(rule(60))
	if body == "" {
		fmt.Println("(not captured)")
		return
	}
	var buf bytes.Buffer
	if json.Indent(&buf, []byte(body), "", "  ") == nil {
		fmt.Println(buf.String())
		return
	}
	fmt.Println(body)
}

func runLLMStats(cmd *cobra.Command, args []string) error {
	s, _, err := openStore(cmd)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer s.Close()

	ctx := context.Background()
	byPurpose, err := s.Events().LLMUsageByPurpose(ctx)
	if err != nil {
		return fmt.Errorf("query usage: %w", err)
	}
	if len(byPurpose) == 0 {
		fmt.Println("No model usage recorded yet.")
		return nil
	}

	const usageRow = "%-16v  %6v  %10v  %10v  %10v  %8v\n"
	fmt.Println("Usage by Purpose")
	fmt.Println(rule(72))
	fmt.Printf(usageRow, "Purpose", "Calls", "Input", "Output", "Total", "Avg Ms")
	fmt.Println(rule(72))
	var calls, in, out int
	for _, u := range byPurpose {
		fmt.Printf(usageRow, u.Purpose, u.Calls, comma(u.InputTokens), comma(u.OutputTokens),
			comma(u.InputTokens+u.OutputTokens), u.AvgLatencyMs)
		calls += u.Calls
		in += u.InputTokens
		out += u.OutputTokens
	}
	fmt.Println(rule(72))
	fmt.Printf(usageRow, "TOTAL", calls, comma(in), comma(out), comma(in+out), "")

	byModel, err := s.Events().LLMUsageByModel(ctx)
	if err != nil {
		return fmt.Errorf("query model usage: %w", err)
	}
	if len(byModel) == 0 {
		return nil
	}

	const costRow = "%-32v  %6v  %10v  %10v  %10v\n"
	fmt.Println()
	fmt.Println("Estimated Cost (USD)")
	fmt.Println(rule(72))
	fmt.Printf(costRow, "Model", "Calls", "Input", "Output", "Cost")
	fmt.Println(rule(72))

	var total float64
	var unpriced []string
	for _, mu := range byModel {
		cost := "?"
		if p := llm.LookupCost(mu.Model); p != nil {
			c := p.Cost(mu.InputTokens, mu.OutputTokens)
			total += c
			cost = formatCost(c)
		} else {
			unpriced = append(unpriced, mu.Model)
		}
		fmt.Printf(costRow, truncate(mu.Model, 32), mu.Calls, comma(mu.InputTokens), comma(mu.OutputTokens), cost)
	}
	fmt.Println(rule(72))
	label := "TOTAL"
	if len(unpriced) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf(costRow, label, "", "", "", formatCost(total))
	if len(unpriced) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unpriced, ", "))
	}
	return nil
}

func rule(n int) string {
	return strings.Repeat("─", n)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func comma(n int) string {
	return humanize.Comma(int64(n))
}

// truncate cuts s to max runes.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
