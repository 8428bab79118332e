package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type hfSynth struct {
	endpoint string
	model    string
	token    string
	client   *http.Client
}

// NewHFSynth targets a Hugging Face text-to-speech endpoint that answers with
// raw samples and a sampling rate.
func NewHFSynth(endpoint, model, token string) Synthesizer {
	return &hfSynth{
		endpoint: strings.TrimRight(endpoint, "/"),
		model:    model,
		token:    token,
		client:   http.DefaultClient,
	}
}

type hfSynthRequest struct {
	Inputs string `json:"inputs"`
}

type hfSynthResponse struct {
	Audio        []float64 `json:"audio"`
	SamplingRate int       `json:"sampling_rate"`
}

func (s *hfSynth) Synthesize(ctx context.Context, text string) (Clip, error) {
	body, err := json.Marshal(hfSynthRequest{Inputs: text})
	if err != nil {
		return Clip{}, err
	}

	url := s.endpoint + "/models/" + s.model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Clip{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return Clip{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Clip{}, err
	}
	if resp.StatusCode >= 300 {
		return Clip{}, fmt.Errorf("tts endpoint returned status %s", resp.Status)
	}

	var out hfSynthResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return Clip{}, fmt.Errorf("decode synthesis response: %w", err)
	}
	// A response without both fields is treated as a failure so the caller
	// can fall back, never as a partial clip.
	if len(out.Audio) == 0 || out.SamplingRate <= 0 {
		return Clip{}, fmt.Errorf("synthesis response missing audio or sampling rate")
	}
	return Clip{Samples: out.Audio, SampleRate: out.SamplingRate}, nil
}
