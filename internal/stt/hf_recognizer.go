package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/m0shaban/ai-virtual-teacher/internal/audioio"
)

type hfRecognizer struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
}

// NewHFRecognizer targets a Hugging Face automatic-speech-recognition endpoint.
func NewHFRecognizer(endpoint, model, token string) Recognizer {
	return &hfRecognizer{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		token:    token,
		client:   http.DefaultClient,
	}
}

type hfTranscript struct {
	Text string `json:"text"`
}

func (r *hfRecognizer) Transcribe(ctx context.Context, samples []float64, sampleRate int) (TranscriptResult, error) {
	body, err := audioio.EncodeWAV(samples, sampleRate)
	if err != nil {
		return TranscriptResult{}, err
	}

	url := r.endpoint + "/models/" + r.model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return TranscriptResult{}, err
	}
	httpReq.Header.Set("Content-Type", "audio/wav")
	if r.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.client.Do(httpReq)
	if err != nil {
		return TranscriptResult{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return TranscriptResult{}, err
	}
	if resp.StatusCode >= 300 {
		return TranscriptResult{}, fmt.Errorf("asr endpoint returned status %s", resp.Status)
	}

	var transcript hfTranscript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return TranscriptResult{}, fmt.Errorf("decode transcript: %w", err)
	}
	return TranscriptResult{Text: transcript.Text}, nil
}
