// Package main provides the insight binary entry point.
// Insight bundles three AI console tools: natural-language product search,
// audio transcription with analytics, and service analysis reports.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	// Register LLM providers via init()
	_ "github.com/c360studio/insight/llm/providers"

	"github.com/c360studio/insight/commands"
)

const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "insight"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	app := &commands.App{}

	cmd := &cobra.Command{
		Use:   appName,
		Short: "AI console tools for search, transcription, and reports",
		Long: `Insight bundles three AI console tools:

- search:     natural-language product search over a local catalog
- transcribe: audio transcription with summaries and analytics
- report:     structured markdown analyses of digital services

Model endpoints, the catalog, and output locations are configured via
insight.yaml, ~/.config/insight/config.yaml, or INSIGHT_* environment
variables. An OPENAI_API_KEY (or a local Ollama endpoint) is required.`,
		SilenceUsage: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.Close()
		},
	}

	cmd.PersistentFlags().StringVarP(&app.ConfigPath, "config", "c", "", "Config file path (YAML)")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	cmd.AddCommand(
		commands.NewSearchCmd(app),
		commands.NewReportCmd(app),
		commands.NewTranscribeCmd(app),
		commands.NewUsageCmd(app),
		commands.NewConfigCmd(),
	)

	// Version command
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s version %s (build: %s)\n", appName, Version, BuildTime)
		},
	})

	return cmd
}
