// Package transcribe turns audio files into transcripts, summaries, and
// analytics. Speech-to-text runs remotely; duration probing, word counting,
// and output formatting run locally.
package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/c360studio/insight/llm"
)

// Processor runs the full transcription pipeline for audio files.
type Processor struct {
	client    *llm.Client
	outputDir string
	logger    *slog.Logger
}

// NewProcessor creates a transcription processor writing outputs to outputDir.
func NewProcessor(client *llm.Client, outputDir string, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		client:    client,
		outputDir: outputDir,
		logger:    logger,
	}
}

// Outcome is the result of processing one audio file.
type Outcome struct {
	// Source is the input audio file.
	Source string

	// Transcript is the raw transcription text.
	Transcript string

	// Summary is the generated prose summary.
	Summary string

	// Analytics holds the quantitative transcript analysis.
	Analytics Analytics

	// TranscriptPath, SummaryPath, and AnalyticsPath are the written files.
	TranscriptPath string
	SummaryPath    string
	AnalyticsPath  string
}

// Process transcribes one audio file, generates its summary and analytics,
// and writes the three output files.
func (p *Processor) Process(ctx context.Context, audioPath string) (*Outcome, error) {
	size, err := ValidateFile(audioPath)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Transcribing audio",
		"file", audioPath,
		"size_bytes", size)

	// Probe locally first; some endpoints do not report duration.
	probedDuration, probeErr := ProbeDuration(audioPath)
	if probeErr != nil {
		p.logger.Debug("Duration probe failed", "file", audioPath, "error", probeErr)
	}

	result, err := p.client.Transcribe(ctx, llm.TranscribeRequest{
		FilePath: audioPath,
	})
	if err != nil {
		return nil, fmt.Errorf("transcribe %s: %w", filepath.Base(audioPath), err)
	}
	if result.Text == "" {
		return nil, fmt.Errorf("transcription of %s came back empty", filepath.Base(audioPath))
	}

	duration := result.Duration
	if duration == 0 {
		duration = probedDuration
	}

	language := resolveLanguage(ctx, p.client, result.Language, result.Text)

	summary, err := p.summarize(ctx, result.Text, language)
	if err != nil {
		return nil, err
	}

	topics := p.extractTopics(ctx, result.Text)

	now := time.Now()
	analytics := buildAnalytics(result.Text, language, duration, topics, now)

	outcome := &Outcome{
		Source:     audioPath,
		Transcript: result.Text,
		Summary:    summary,
		Analytics:  analytics,
	}

	if err := p.writeOutputs(outcome, language, now); err != nil {
		return nil, err
	}

	p.logger.Info("Transcription complete",
		"file", audioPath,
		"language", language,
		"words", analytics.WordCount,
		"duration_min", analytics.AudioDurationMinutes)

	return outcome, nil
}

// ProcessGlob processes every audio file matching the doublestar pattern.
// Failures are isolated per file: one bad file does not stop the batch.
func (p *Processor) ProcessGlob(ctx context.Context, pattern string) ([]*Outcome, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no files match %q", pattern)
	}

	var outcomes []*Outcome
	var failed int
	for _, match := range matches {
		if ctx.Err() != nil {
			return outcomes, ctx.Err()
		}

		outcome, err := p.Process(ctx, match)
		if err != nil {
			failed++
			p.logger.Error("Skipping file after failure", "file", match, "error", err)
			continue
		}
		outcomes = append(outcomes, outcome)
	}

	if len(outcomes) == 0 {
		return nil, fmt.Errorf("all %d matching files failed", failed)
	}
	return outcomes, nil
}

// writeOutputs saves the transcript, summary, and analytics files, recording
// their paths in the outcome.
func (p *Processor) writeOutputs(outcome *Outcome, language string, now time.Time) error {
	if err := os.MkdirAll(p.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ts := now.Format("20060102_150405")
	header := fmt.Sprintf("*Source: %s | Language: %s | Generated on %s*",
		filepath.Base(outcome.Source), LanguageName(language), now.Format("2006-01-02 15:04:05"))

	transcript := fmt.Sprintf("# Transcription\n\n%s\n\n%s\n", header, outcome.Transcript)
	outcome.TranscriptPath = filepath.Join(p.outputDir, fmt.Sprintf("transcription_%s_%s.md", language, ts))
	if err := os.WriteFile(outcome.TranscriptPath, []byte(transcript), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}

	summary := fmt.Sprintf("# Summary\n\n%s\n\n%s\n", header, outcome.Summary)
	outcome.SummaryPath = filepath.Join(p.outputDir, fmt.Sprintf("summary_%s_%s.md", language, ts))
	if err := os.WriteFile(outcome.SummaryPath, []byte(summary), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	data, err := json.MarshalIndent(outcome.Analytics, "", "  ")
	if err != nil {
		return fmt.Errorf("encode analytics: %w", err)
	}
	outcome.AnalyticsPath = filepath.Join(p.outputDir, fmt.Sprintf("analysis_%s_%s.json", language, ts))
	if err := os.WriteFile(outcome.AnalyticsPath, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write analytics: %w", err)
	}

	return nil
}
