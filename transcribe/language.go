package transcribe

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/insight/llm"
	"github.com/c360studio/insight/model"
)

// languageNames maps ISO 639-1 codes to display names. Covers the languages
// transcription endpoints detect in practice.
var languageNames = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"uk": "Ukrainian",
	"cs": "Czech",
	"sk": "Slovak",
	"sv": "Swedish",
	"no": "Norwegian",
	"da": "Danish",
	"fi": "Finnish",
	"el": "Greek",
	"tr": "Turkish",
	"he": "Hebrew",
	"ar": "Arabic",
	"fa": "Persian",
	"hi": "Hindi",
	"bn": "Bengali",
	"ta": "Tamil",
	"th": "Thai",
	"vi": "Vietnamese",
	"id": "Indonesian",
	"ms": "Malay",
	"zh": "Chinese",
	"ja": "Japanese",
	"ko": "Korean",
	"hu": "Hungarian",
	"ro": "Romanian",
	"bg": "Bulgarian",
	"hr": "Croatian",
	"sr": "Serbian",
	"sl": "Slovenian",
	"lt": "Lithuanian",
	"lv": "Latvian",
	"et": "Estonian",
}

// languageCodes is the reverse mapping, keyed by lowercase display name.
var languageCodes = func() map[string]string {
	codes := make(map[string]string, len(languageNames))
	for code, name := range languageNames {
		codes[strings.ToLower(name)] = code
	}
	return codes
}()

var isoCodeRe = regexp.MustCompile(`^[a-z]{2}$`)

// NormalizeLanguage reduces a provider-reported language to an ISO 639-1
// code. Providers return either codes ("en") or names ("english"); anything
// unrecognized returns "".
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return ""
	}
	if isoCodeRe.MatchString(lang) {
		return lang
	}
	if code, ok := languageCodes[lang]; ok {
		return code
	}
	return ""
}

// LanguageName returns the display name for an ISO code, or a generic label
// for codes outside the table.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return fmt.Sprintf("Detected (%s)", code)
}

// detectionSampleBytes caps how much transcript is sent for detection; a
// longer sample adds no signal.
const detectionSampleBytes = 1000

// truncateSample caps text at detectionSampleBytes without splitting a
// multi-byte rune.
func truncateSample(text string) string {
	if len(text) <= detectionSampleBytes {
		return text
	}
	cut := detectionSampleBytes
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// detectLanguage asks a fast model for the ISO 639-1 code of the transcript.
// Used when the transcription endpoint reports no language, and to
// double-check the common misdetection of non-English audio as English.
func detectLanguage(ctx context.Context, client *llm.Client, text string) (string, error) {
	sample := truncateSample(text)

	temperature := 0.0
	resp, err := client.Complete(ctx, llm.Request{
		Capability:  string(model.CapabilityFast),
		Temperature: &temperature,
		MaxTokens:   10,
		Messages: []llm.Message{
			{Role: "system", Content: "Identify the language of the text. Respond with only the two-letter ISO 639-1 code, nothing else."},
			{Role: "user", Content: sample},
		},
	})
	if err != nil {
		return "", err
	}

	code := strings.ToLower(strings.Trim(strings.TrimSpace(resp.Content), `"'.`))
	if !isoCodeRe.MatchString(code) {
		return "", fmt.Errorf("model returned %q, not an ISO 639-1 code", resp.Content)
	}
	return code, nil
}

// resolveLanguage settles the transcript language: normalize what the
// endpoint reported, re-detect when it is missing or suspiciously "en",
// and fall back to English when detection itself fails.
func resolveLanguage(ctx context.Context, client *llm.Client, reported, text string) string {
	code := NormalizeLanguage(reported)

	if code == "" || code == "en" {
		if detected, err := detectLanguage(ctx, client, text); err == nil {
			return detected
		}
	}

	if code == "" {
		return "en"
	}
	return code
}
