package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/c360studio/insight/report"
)

// NewReportCmd builds the service analysis report command.
func NewReportCmd(app *App) *cobra.Command {
	var (
		service  string
		text     string
		textFile string
		output   string
		noSave   bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate a markdown analysis of a digital service",
		Long: `Report produces a structured markdown analysis of a digital service from
business, technical, and user perspectives.

Give it either a known service name or a raw description:

  insight report --service Spotify
  insight report --text-file ./about-page.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sources := 0
			for _, s := range []string{service, text, textFile} {
				if s != "" {
					sources++
				}
			}
			if sources != 1 {
				return fmt.Errorf("exactly one of --service, --text, or --text-file is required")
			}

			if err := app.Setup(); err != nil {
				return err
			}

			gen := report.NewGenerator(app.Client(), app.Logger())
			ctx := cmd.Context()

			var rep *report.Report
			var err error
			switch {
			case service != "":
				rep, err = gen.FromService(ctx, service)
			case textFile != "":
				data, readErr := os.ReadFile(textFile)
				if readErr != nil {
					return fmt.Errorf("read description file: %w", readErr)
				}
				rep, err = gen.FromText(ctx, string(data))
			default:
				rep, err = gen.FromText(ctx, text)
			}
			if err != nil {
				return err
			}

			fmt.Print(rep.Document())

			if noSave {
				return nil
			}

			dir := app.Config().Outputs.Dir
			if output != "" {
				dir = output
			}
			path, err := rep.Save(dir)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "\nReport saved to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&service, "service", "", "Name of a known service (e.g. Spotify, Notion)")
	cmd.Flags().StringVar(&text, "text", "", "Raw service description text")
	cmd.Flags().StringVar(&textFile, "text-file", "", "File containing a service description")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides config)")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "Print the report without saving it")

	return cmd
}
