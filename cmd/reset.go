package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget saved quiz sessions",
	Long:  "Deletes every saved quiz snapshot so --resume starts fresh. The LLM and quiz event log is kept.",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, _, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		n, err := s.Snapshots().Clear(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d saved quiz session(s).\n", n)
		return nil
	},
}
