// Package speech provides optional speech-to-text and text-to-speech
// support over OpenAI-compatible audio endpoints. The survey works fully
// without it; callers treat every failure here as non-fatal.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Transcriber converts recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (string, error)
}

// Synthesizer converts text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config holds the endpoints and defaults for the speech engine.
type Config struct {
	// STTEndpoint is the transcription endpoint
	// (e.g. http://localhost:8880/v1/audio/transcriptions).
	STTEndpoint string

	// TTSEndpoint is the synthesis endpoint
	// (e.g. http://localhost:8880/v1/audio/speech).
	TTSEndpoint string

	// Model is the STT model name (e.g. "whisper-1").
	Model string

	// Voice is the TTS voice id.
	Voice string

	// ResponseFormat is the synthesized audio format (e.g. "wav").
	ResponseFormat string

	// Timeout bounds each HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns local-server defaults.
func DefaultConfig() Config {
	return Config{
		STTEndpoint:    "http://localhost:8880/v1/audio/transcriptions",
		TTSEndpoint:    "http://localhost:8880/v1/audio/speech",
		Model:          "whisper-1",
		Voice:          "alloy",
		ResponseFormat: "wav",
		Timeout:        60 * time.Second,
	}
}

// Engine implements Transcriber and Synthesizer over HTTP.
type Engine struct {
	config     Config
	httpClient *http.Client
}

// NewEngine creates a speech engine with the given config. Zero-value
// fields fall back to DefaultConfig.
func NewEngine(config Config) *Engine {
	defaults := DefaultConfig()
	if config.STTEndpoint == "" {
		config.STTEndpoint = defaults.STTEndpoint
	}
	if config.TTSEndpoint == "" {
		config.TTSEndpoint = defaults.TTSEndpoint
	}
	if config.Model == "" {
		config.Model = defaults.Model
	}
	if config.Voice == "" {
		config.Voice = defaults.Voice
	}
	if config.ResponseFormat == "" {
		config.ResponseFormat = defaults.ResponseFormat
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &Engine{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends recorded audio as a multipart form and returns the
// transcribed text.
func (e *Engine) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("no audio data to transcribe")
	}
	if filename == "" {
		filename = "recording.wav"
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("write audio data: %w", err)
	}
	if err := writer.WriteField("model", e.config.Model); err != nil {
		return "", fmt.Errorf("write model field: %w", err)
	}
	if err := writer.WriteField("response_format", "json"); err != nil {
		return "", fmt.Errorf("write response_format field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.STTEndpoint, body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription error (%d): %s", resp.StatusCode, string(respBody))
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("decode transcription: %w", err)
	}

	text := strings.TrimSpace(result.Text)
	log.Debug().Int("audio_bytes", len(audio)).Int("text_len", len(text)).Msg("transcription complete")
	return text, nil
}

// ttsRequest is the OpenAI-compatible synthesis request body.
type ttsRequest struct {
	Model          string `json:"model,omitempty"`
	Input          string `json:"input"`
	Voice          string `json:"voice"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// Synthesize converts text into audio bytes.
func (e *Engine) Synthesize(ctx context.Context, text string) ([]byte, error) {
	cleaned := strings.TrimSpace(text)
	if cleaned == "" {
		return nil, fmt.Errorf("no text to synthesize")
	}

	payload, err := json.Marshal(ttsRequest{
		Input:          cleaned,
		Voice:          e.config.Voice,
		ResponseFormat: e.config.ResponseFormat,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.config.TTSEndpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("synthesis error (%d): %s", resp.StatusCode, string(errBody))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read audio: %w", err)
	}

	log.Debug().Int("text_len", len(cleaned)).Int("audio_bytes", len(audio)).Msg("synthesis complete")
	return audio, nil
}
