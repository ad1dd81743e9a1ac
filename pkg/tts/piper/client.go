package piper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/osinachi-dev/voxgate/pkg/Logger"
	"github.com/osinachi-dev/voxgate/pkg/audio"
	"github.com/osinachi-dev/voxgate/pkg/tts"
)

// Client speaks to a Piper TTS HTTP service
// (rhasspy/wyoming-piper: GET /api/text-to-speech?text=...&voice=...).
type Client struct {
	baseURL    string
	voice      string
	outDir     string
	httpClient *http.Client
	logger     *Logger.Logger
}

func New(baseURL, voice, outDir string, logger *Logger.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		voice:   voice,
		outDir:  outDir,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// Synthesize fetches a WAV body for the text and lands it in outDir under a
// unique name. The caller owns the file afterwards.
func (c *Client) Synthesize(ctx context.Context, text string) (*tts.Synthesis, error) {
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	u, err := url.Parse(c.baseURL + "/api/text-to-speech")
	if err != nil {
		return nil, fmt.Errorf("invalid tts url: %w", err)
	}
	q := u.Query()
	q.Set("text", text)
	if c.voice != "" {
		q.Set("voice", c.voice)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/wav")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("tts http %d: %s (dur=%s)", resp.StatusCode, string(b), time.Since(start))
	}

	if err := os.MkdirAll(c.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create tts output dir: %w", err)
	}
	outPath := filepath.Join(c.outDir, uuid.NewString()+".wav")
	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create tts output file: %w", err)
	}
	written, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(outPath)
		return nil, fmt.Errorf("failed to write tts audio: %w", err)
	}

	c.logger.Debugf("tts synthesized %d bytes to %s in %s", written, outPath, time.Since(start))

	return &tts.Synthesis{
		AudioPath: outPath,
		Duration:  audio.EstimateDuration(text),
		Format:    "wav",
	}, nil
}
