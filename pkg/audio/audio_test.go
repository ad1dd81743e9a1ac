package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidFormat(t *testing.T) {
	testcases := []struct {
		filename string
		want     bool
	}{
		{"speech.wav", true},
		{"speech.WAV", true},
		{"speech.mp3", true},
		{"speech.ogg", true},
		{"speech.webm", true},
		{"speech.flac", false},
		{"speech.txt", false},
		{"noextension", false},
		{"", false},
	}

	for _, tc := range testcases {
		assert.Equal(t, tc.want, ValidFormat(tc.filename), "filename %q", tc.filename)
	}
}

func TestMIMEType(t *testing.T) {
	assert.Equal(t, "audio/wav", MIMEType("a.wav"))
	assert.Equal(t, "audio/mpeg", MIMEType("a.mp3"))
	assert.Equal(t, "", MIMEType("a.txt"))
}

func TestEstimateDuration(t *testing.T) {
	// 150 words at 150 wpm is one minute
	words := ""
	for i := 0; i < 150; i++ {
		words += "word "
	}
	assert.Equal(t, time.Minute, EstimateDuration(words))

	// short texts floor at one second
	assert.Equal(t, time.Second, EstimateDuration("hi"))
	assert.Equal(t, time.Second, EstimateDuration(""))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1 KB", FormatSize(1024))
	assert.Equal(t, "1.5 MB", FormatSize(3*1024*1024/2))
}
