package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/c360studio/insight/llm"
	"github.com/c360studio/insight/model"
)

// maxTopics caps the frequently-mentioned-topics list.
const maxTopics = 5

// Topic is one recurring subject in the transcript with its mention count.
type Topic struct {
	Topic    string `json:"topic"`
	Mentions int    `json:"mentions"`
}

// Analytics summarizes a transcript quantitatively.
type Analytics struct {
	Language             string  `json:"language"`
	WordCount            int     `json:"word_count"`
	SpeakingSpeedWPM     float64 `json:"speaking_speed_wpm"`
	AudioDurationMinutes float64 `json:"audio_duration_minutes"`
	Timestamp            string  `json:"timestamp"`
	Topics               []Topic `json:"frequently_mentioned_topics"`
}

// CountWords counts words in a language-aware way: whitespace-separated
// tokens for most languages, individual Han/kana characters for Chinese and
// Japanese, where whitespace does not delimit words.
func CountWords(text, language string) int {
	if language == "zh" || language == "ja" {
		count := 0
		for _, r := range text {
			if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) || unicode.Is(unicode.Katakana, r) {
				count++
			}
		}
		if count > 0 {
			return count
		}
		// Fall through for mislabeled text with no CJK characters.
	}
	return len(strings.Fields(text))
}

// summaryTargetWords scales the summary length with the transcript: roughly
// a tenth of the word count, clamped to 150-300 words.
func summaryTargetWords(wordCount int) int {
	target := wordCount / 10
	if target < 150 {
		target = 150
	}
	if target > 300 {
		target = 300
	}
	return target
}

// summarize produces a prose summary of the transcript in its own language.
func (p *Processor) summarize(ctx context.Context, text, language string) (string, error) {
	target := summaryTargetWords(CountWords(text, language))

	temperature := 0.3
	resp, err := p.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilitySummarization),
		Temperature: &temperature,
		Messages: []llm.Message{
			{Role: "system", Content: fmt.Sprintf(
				"Summarize the transcript in about %d words, in the same language as the transcript (%s). Preserve the key points, decisions, and conclusions. Output only the summary.",
				target, LanguageName(language))},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("summarize transcript: %w", err)
	}

	summary := strings.TrimSpace(resp.Content)
	if summary == "" {
		return "", fmt.Errorf("model returned an empty summary")
	}
	return summary, nil
}

// extractTopics asks an analysis model for recurring topics with mention
// counts. Model output is cleaned and validated; when nothing usable comes
// back, a single generic topic is returned rather than an error, since
// analytics should not fail an otherwise successful transcription.
func (p *Processor) extractTopics(ctx context.Context, text string) []Topic {
	temperature := 0.2
	resp, err := p.client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityAnalysis),
		Temperature: &temperature,
		Messages: []llm.Message{
			{Role: "system", Content: `Identify the topics mentioned repeatedly in the transcript and count how often each comes up. Respond with only a JSON array of objects: [{"topic": "...", "mentions": N}, ...]. Topic names should be short noun phrases in English.`},
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		p.logger.Warn("Topic extraction failed", "error", err)
		return fallbackTopics()
	}

	topics := parseTopics(resp.Content)
	if len(topics) == 0 {
		p.logger.Warn("Topic extraction returned nothing usable")
		return fallbackTopics()
	}
	return topics
}

// parseTopics decodes the model's topic list, tolerating markdown fences and
// surrounding prose, then keeps the top entries by mention count.
func parseTopics(content string) []Topic {
	raw := llm.ExtractJSONArray(content)
	if raw == "" {
		// Some models wrap the array in an object.
		obj := llm.ExtractJSON(content)
		if obj == "" {
			return nil
		}
		var wrapper struct {
			Topics []Topic `json:"topics"`
		}
		if json.Unmarshal([]byte(obj), &wrapper) != nil || len(wrapper.Topics) == 0 {
			return nil
		}
		data, err := json.Marshal(wrapper.Topics)
		if err != nil {
			return nil
		}
		raw = string(data)
	}

	var topics []Topic
	if err := json.Unmarshal([]byte(raw), &topics); err != nil {
		return nil
	}

	valid := topics[:0]
	for _, t := range topics {
		t.Topic = strings.TrimSpace(t.Topic)
		if t.Topic == "" {
			continue
		}
		if t.Mentions < 1 {
			t.Mentions = 1
		}
		valid = append(valid, t)
	}

	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Mentions > valid[j].Mentions })
	if len(valid) > maxTopics {
		valid = valid[:maxTopics]
	}
	return valid
}

func fallbackTopics() []Topic {
	return []Topic{{Topic: "General Discussion", Mentions: 1}}
}

// buildAnalytics assembles the analytics record from the transcript and its
// measured duration.
func buildAnalytics(text, language string, durationSeconds float64, topics []Topic, now time.Time) Analytics {
	wordCount := CountWords(text, language)

	var wpm float64
	if durationSeconds > 0 {
		wpm = float64(wordCount) / (durationSeconds / 60)
		wpm = float64(int(wpm*10+0.5)) / 10 // one decimal place
	}

	minutes := float64(int(durationSeconds/60*100+0.5)) / 100

	return Analytics{
		Language:             language,
		WordCount:            wordCount,
		SpeakingSpeedWPM:     wpm,
		AudioDurationMinutes: minutes,
		Timestamp:            now.UTC().Format(time.RFC3339),
		Topics:               topics,
	}
}
