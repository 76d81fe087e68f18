package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "whisper-1", r.FormValue("model"))
		assert.Equal(t, "json", r.FormValue("response_format"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "answer.wav", header.Filename)

		json.NewEncoder(w).Encode(map[string]string{"text": "  I loved the onboarding flow  "})
	}))
	defer server.Close()

	engine := NewEngine(Config{STTEndpoint: server.URL})
	text, err := engine.Transcribe(context.Background(), []byte("RIFFfake"), "answer.wav")
	require.NoError(t, err)
	assert.Equal(t, "I loved the onboarding flow", text)
}

func TestTranscribeServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	engine := NewEngine(Config{STTEndpoint: server.URL})
	_, err := engine.Transcribe(context.Background(), []byte("RIFFfake"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestTranscribeRejectsEmptyAudio(t *testing.T) {
	engine := NewEngine(Config{})
	_, err := engine.Transcribe(context.Background(), nil, "")
	assert.Error(t, err)
}

func TestSynthesize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ttsRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "What stood out?", req.Input)
		assert.Equal(t, "alloy", req.Voice)
		assert.Equal(t, "wav", req.ResponseFormat)

		w.Write([]byte("RIFFaudio"))
	}))
	defer server.Close()

	engine := NewEngine(Config{TTSEndpoint: server.URL})
	audio, err := engine.Synthesize(context.Background(), "  What stood out?  ")
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFFaudio"), audio)
}

func TestSynthesizeRejectsEmptyText(t *testing.T) {
	engine := NewEngine(Config{})
	_, err := engine.Synthesize(context.Background(), "   ")
	assert.Error(t, err)
}
