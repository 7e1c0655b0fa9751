package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewUsageCmd builds the token usage and call history command.
func NewUsageCmd(app *App) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Show recorded LLM calls and token usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(); err != nil {
				return err
			}

			calls := app.Calls()
			if calls == nil {
				return fmt.Errorf("call recording is disabled (trajectory.disabled or store unavailable)")
			}

			ctx := cmd.Context()

			usage, err := calls.Usage(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Total tokens: %d (prompt %d, completion %d)\n\n",
				usage.TotalTokens, usage.PromptTokens, usage.CompletionTokens)

			records, err := calls.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No calls recorded yet.")
				return nil
			}

			for _, r := range records {
				status := "ok"
				if r.Error != "" {
					status = "error"
				}
				fmt.Printf("%s  %-14s %-20s %6d tok  %5dms  %s\n",
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Capability, r.Model, r.TotalTokens, r.DurationMs, status)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of recent calls to show")

	return cmd
}
