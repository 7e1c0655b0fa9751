package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/c360studio/insight/transcribe"
)

// NewTranscribeCmd builds the audio transcription command.
func NewTranscribeCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "transcribe <audio-file-or-glob>...",
		Short: "Transcribe audio and generate a summary and analytics",
		Long: `Transcribe uploads audio to a speech-to-text model, then writes three
files per input: the transcript, a prose summary, and a JSON analytics
record (word count, speaking speed, frequent topics).

Arguments may be files or glob patterns (including **):

  insight transcribe meeting.mp3
  insight transcribe 'recordings/**/*.wav'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Setup(); err != nil {
				return err
			}

			dir := app.Config().Outputs.Dir
			if output != "" {
				dir = output
			}
			proc := transcribe.NewProcessor(app.Client(), dir, app.Logger())

			var outcomes []*transcribe.Outcome
			for _, arg := range args {
				if isGlobPattern(arg) {
					batch, err := proc.ProcessGlob(cmd.Context(), arg)
					if err != nil {
						return err
					}
					outcomes = append(outcomes, batch...)
					continue
				}

				outcome, err := proc.Process(cmd.Context(), arg)
				if err != nil {
					return err
				}
				outcomes = append(outcomes, outcome)
			}

			for _, o := range outcomes {
				printOutcome(o)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (overrides config)")

	return cmd
}

// isGlobPattern reports whether the argument contains glob metacharacters.
func isGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}

func printOutcome(o *transcribe.Outcome) {
	a := o.Analytics
	fmt.Printf("\n%s\n", o.Source)
	fmt.Printf("  Language:        %s\n", transcribe.LanguageName(a.Language))
	fmt.Printf("  Words:           %d\n", a.WordCount)
	fmt.Printf("  Duration:        %.2f min\n", a.AudioDurationMinutes)
	fmt.Printf("  Speaking speed:  %.1f wpm\n", a.SpeakingSpeedWPM)
	if len(a.Topics) > 0 {
		fmt.Println("  Top topics:")
		for _, t := range a.Topics {
			fmt.Printf("    - %s (%d mentions)\n", t.Topic, t.Mentions)
		}
	}
	fmt.Printf("  Transcript: %s\n", o.TranscriptPath)
	fmt.Printf("  Summary:    %s\n", o.SummaryPath)
	fmt.Printf("  Analytics:  %s\n", o.AnalyticsPath)
}
