package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/asr"
)

// TranscriptionResponse represents the response from the Whisper STT service
type TranscriptionResponse struct {
	Text     string                 `json:"text"`
	Language string                 `json:"language"`
	Segments []TranscriptionSegment `json:"segments,omitempty"`
}

// TranscriptionSegment represents a timed segment of transcription
type TranscriptionSegment struct {
	Text             string  `json:"text"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	ID               int     `json:"id"`
	AvgLogprob       float64 `json:"avg_logprob"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	CompressionRatio float64 `json:"compression_ratio"`
}

// Client handles communication with a Whisper STT service
// (e.g. onerahmet/openai-whisper-asr-webservice).
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *Logger.Logger
}

func New(baseURL string, logger *Logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Transcribe uploads the audio file to the Whisper service and returns the
// transcription. The service answers JSON normally but plain text under
// some configurations, so both are tolerated.
func (c *Client) Transcribe(ctx context.Context, audioPath string, languageHint string) (*asr.Transcription, error) {
	audioData, err := os.ReadFile(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	if len(audioData) == 0 {
		return nil, fmt.Errorf("empty audio file: %s", audioPath)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("audio_file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audioData); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	requestURL := fmt.Sprintf("%s/asr?encode=true&task=transcribe&language=%s&output=json",
		c.baseURL, url.QueryEscape(languageHint))
	req, err := http.NewRequestWithContext(ctx, "POST", requestURL, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Errorf("whisper service error (status %d): %s", resp.StatusCode, string(responseBody))
		return nil, fmt.Errorf("whisper service returned status %d: %s", resp.StatusCode, string(responseBody))
	}
	if len(responseBody) == 0 {
		return nil, fmt.Errorf("whisper service returned empty response")
	}

	var transcription TranscriptionResponse
	if err := json.Unmarshal(responseBody, &transcription); err != nil {
		// Some deployments answer text/plain.
		responseText := string(responseBody)
		if responseText != "" {
			c.logger.Infof("treating whisper response as plain text transcription")
			return &asr.Transcription{
				Text:     responseText,
				Language: languageHint,
			}, nil
		}
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	c.logger.Debugf("whisper transcription: %q (language: %s)", transcription.Text, transcription.Language)

	return &asr.Transcription{
		Text:       transcription.Text,
		Language:   transcription.Language,
		Confidence: confidenceFromSegments(transcription.Segments),
	}, nil
}

// IsAlive pings the service root.
func (c *Client) IsAlive() bool {
	resp, err := c.httpClient.Get(c.baseURL + "/")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < http.StatusInternalServerError
}

// confidenceFromSegments averages segment log probabilities into a rough
// 0-1 confidence. Whisper gives no word-level confidence, so nil when no
// segments came back.
func confidenceFromSegments(segments []TranscriptionSegment) *float64 {
	if len(segments) == 0 {
		return nil
	}
	var sum float64
	for _, seg := range segments {
		p := seg.AvgLogprob
		// avg_logprob is <= 0; clamp into a usable range before mapping.
		if p < -1 {
			p = -1
		}
		sum += 1 + p
	}
	conf := sum / float64(len(segments))
	return &conf
}
