package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type hfGenerator struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHFGenerator targets the Hugging Face serverless inference API.
func NewHFGenerator(endpoint, token string) Generator {
	return &hfGenerator{
		endpoint: strings.TrimRight(endpoint, "/"),
		token:    token,
		client:   http.DefaultClient,
	}
}

type hfParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens,omitempty"`
	Temperature    float64 `json:"temperature,omitempty"`
	DoSample       bool    `json:"do_sample"`
	ReturnFullText bool    `json:"return_full_text"`
}

type hfRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfGeneration struct {
	GeneratedText string `json:"generated_text"`
}

type hfError struct {
	Error string `json:"error"`
}

func (g *hfGenerator) Generate(ctx context.Context, req Request) (string, error) {
	payload := hfRequest{
		Inputs: req.Prompt,
		Parameters: hfParameters{
			MaxNewTokens:   req.MaxTokens,
			Temperature:    req.Temperature,
			DoSample:       true,
			ReturnFullText: false,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	url := g.endpoint + "/models/" + req.Model
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if g.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.token)
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 300 {
		var apiErr hfError
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("inference API returned status %s: %s", resp.Status, apiErr.Error)
		}
		return "", fmt.Errorf("inference API returned status %s", resp.Status)
	}

	var generations []hfGeneration
	if err := json.Unmarshal(data, &generations); err != nil {
		// Some backends answer with a single object instead of a list.
		var single hfGeneration
		if err := json.Unmarshal(data, &single); err != nil {
			return "", fmt.Errorf("decode generation response: %w", err)
		}
		return single.GeneratedText, nil
	}
	if len(generations) == 0 {
		return "", fmt.Errorf("inference API returned no generations")
	}
	return generations[0].GeneratedText, nil
}
