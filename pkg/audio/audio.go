// Package audio holds the small shared helpers for audio uploads: format
// whitelisting, size formatting, and the word-rate duration estimate used
// when a synthesizer doesn't report real timing.
package audio

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"
)

// supportedExtensions maps upload extensions to their MIME types.
var supportedExtensions = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

// wordsPerMinute is the assumed speaking rate for duration estimates.
const wordsPerMinute = 150

// ValidFormat reports whether the filename carries a supported audio
// extension.
func ValidFormat(filename string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(filename))]
	return ok
}

// MIMEType returns the MIME type for a supported filename, or "" otherwise.
func MIMEType(filename string) string {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// EstimateDuration guesses playback length from word count, with a one
// second floor.
func EstimateDuration(text string) time.Duration {
	words := len(strings.Fields(text))
	secs := float64(words) / wordsPerMinute * 60
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs * float64(time.Second))
}

// FormatSize renders a byte count human-readably, e.g. "1.5 MB".
func FormatSize(sizeBytes int64) string {
	if sizeBytes == 0 {
		return "0 B"
	}
	units := []string{"B", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(sizeBytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	size := float64(sizeBytes) / math.Pow(1024, float64(i))
	return fmt.Sprintf("%.4g %s", size, units[i])
}
