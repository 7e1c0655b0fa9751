package transcribe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// maxFileSize is the upload limit imposed by transcription endpoints.
const maxFileSize = 25 * 1024 * 1024 // 25MB

// supportedExtensions are the audio container formats transcription
// endpoints accept.
var supportedExtensions = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".m4a":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".webm": true,
}

// ValidateFile checks that path points to a supported, uploadable audio file
// and returns its size in bytes.
func ValidateFile(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("audio file: %w", err)
	}
	if info.IsDir() {
		return 0, fmt.Errorf("audio file %s is a directory", path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return 0, fmt.Errorf("unsupported audio format %q (supported: %s)",
			ext, strings.Join(extensionList(), ", "))
	}

	if info.Size() == 0 {
		return 0, fmt.Errorf("audio file %s is empty", path)
	}
	if info.Size() > maxFileSize {
		return 0, fmt.Errorf("audio file is %.1fMB, exceeding the %dMB limit",
			float64(info.Size())/(1024*1024), maxFileSize/(1024*1024))
	}

	return info.Size(), nil
}

func extensionList() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
