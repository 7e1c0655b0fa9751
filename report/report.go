// Package report generates multi-section markdown analyses of digital
// services, from either a known service name or a raw service description.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/c360studio/insight/llm"
	"github.com/c360studio/insight/model"
)

// sections are the required report headings, in order.
var sections = []string{
	"Brief History",
	"Target Audience",
	"Core Features",
	"Unique Selling Points",
	"Business Model",
	"Tech Stack Insights",
	"Perceived Strengths",
	"Perceived Weaknesses",
}

const (
	// reportTemperature keeps output factual without being robotic.
	reportTemperature = 0.3
	reportMaxTokens   = 2000
)

// Generator produces service analysis reports.
type Generator struct {
	client *llm.Client
	logger *slog.Logger
}

// NewGenerator creates a report generator.
func NewGenerator(client *llm.Client, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{client: client, logger: logger}
}

// Report is a generated analysis.
type Report struct {
	// Subject is the service name or a short label for raw-text input.
	Subject string

	// Markdown is the full report body.
	Markdown string

	// Model is the model that produced the report.
	Model string

	// GeneratedAt is when the report was produced.
	GeneratedAt time.Time
}

// FromService generates a report for a known service by name, relying on the
// model's knowledge of the service.
func (g *Generator) FromService(ctx context.Context, name string) (*Report, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service name is empty")
	}

	prompt := fmt.Sprintf(
		"Analyze the digital service known as %q. Use what you know about this service to produce the report. If you are not confident you know this service, say so in the Brief History section and analyze what the name suggests.",
		name)

	return g.generate(ctx, name, prompt)
}

// FromText generates a report from a raw service description, such as an
// "about us" page.
func (g *Generator) FromText(ctx context.Context, text string) (*Report, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("service description is empty")
	}

	prompt := fmt.Sprintf(
		"Analyze the digital service described below. Base the report on the description, supplemented by general knowledge where the description is silent.\n\nService description:\n%s",
		text)

	return g.generate(ctx, "Service Description", prompt)
}

func (g *Generator) generate(ctx context.Context, subject, prompt string) (*Report, error) {
	temperature := reportTemperature

	resp, err := g.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityAnalysis),
		Temperature: &temperature,
		MaxTokens:   reportMaxTokens,
		Messages: []llm.Message{
			{Role: "system", Content: systemPrompt()},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	body := strings.TrimSpace(resp.Content)
	if body == "" {
		return nil, fmt.Errorf("model returned an empty report")
	}

	g.logger.Debug("Report generated",
		"subject", subject,
		"model", resp.Model,
		"tokens", resp.Usage.TotalTokens)

	return &Report{
		Subject:     subject,
		Markdown:    body,
		Model:       resp.Model,
		GeneratedAt: time.Now(),
	}, nil
}

// systemPrompt lists the required sections and the register to write them in.
func systemPrompt() string {
	var b strings.Builder

	b.WriteString("You are a product analyst. Produce a markdown report about a digital service with exactly these sections, as ## headings, in this order:\n\n")
	for _, s := range sections {
		fmt.Fprintf(&b, "## %s\n", s)
	}
	b.WriteString(`
Requirements:
- Write from business, technical, and user perspectives.
- Keep each section concise: a short paragraph or a few bullet points.
- Be specific; avoid generic filler that would apply to any service.
- Output only the report markdown, with no preamble or closing remarks.`)

	return b.String()
}

// Document renders the report with its generation header.
func (r *Report) Document() string {
	return fmt.Sprintf("# Service Analysis Report: %s\n\n*Generated on %s*\n\n%s\n",
		r.Subject, r.GeneratedAt.Format("2006-01-02 15:04:05"), r.Markdown)
}

// Save writes the report into dir and returns the file path.
func (r *Report) Save(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	name := fmt.Sprintf("report_%s_%s.md", slugify(r.Subject), r.GeneratedAt.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	if err := os.WriteFile(path, []byte(r.Document()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}

	return path, nil
}

// slugify reduces a subject to a safe lowercase filename fragment.
func slugify(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.':
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		slug = "service"
	}
	if len(slug) > 40 {
		slug = slug[:40]
	}
	return slug
}
