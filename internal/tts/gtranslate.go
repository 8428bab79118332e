package tts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// chunkRunes bounds each fetch; the translate endpoint rejects long queries.
const chunkRunes = 200

type googleTranslateTTS struct {
	endpoint string
	client   *http.Client
}

// NewGoogleTranslateTTS fetches compressed speech from the Google Translate
// TTS endpoint, the always-available secondary provider.
func NewGoogleTranslateTTS(endpoint string) FallbackProvider {
	return &googleTranslateTTS{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   http.DefaultClient,
	}
}

func (g *googleTranslateTTS) Fetch(ctx context.Context, text, langCode string) ([]byte, error) {
	var out []byte
	for _, chunk := range splitChunks(text, chunkRunes) {
		data, err := g.fetchChunk(ctx, chunk, langCode)
		if err != nil {
			return nil, err
		}
		// MP3 frames are self-delimiting; concatenated chunks play back to back.
		out = append(out, data...)
	}
	return out, nil
}

func (g *googleTranslateTTS) fetchChunk(ctx context.Context, text, langCode string) ([]byte, error) {
	query := url.Values{}
	query.Set("ie", "UTF-8")
	query.Set("client", "tw-ob")
	query.Set("tl", langCode)
	query.Set("q", text)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("translate tts returned status %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

func splitChunks(text string, maxRunes int) []string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return []string{text}
	}
	var chunks []string
	var current strings.Builder
	count := 0
	flush := func() {
		if current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
			count = 0
		}
	}
	for _, word := range strings.Fields(text) {
		// A single word longer than the limit is cut at rune boundaries.
		for utf8.RuneCountInString(word) > maxRunes {
			flush()
			runes := []rune(word)
			chunks = append(chunks, string(runes[:maxRunes]))
			word = string(runes[maxRunes:])
		}
		wordLen := utf8.RuneCountInString(word)
		if count > 0 && count+wordLen+1 > maxRunes {
			flush()
		}
		if count > 0 {
			current.WriteByte(' ')
			count++
		}
		current.WriteString(word)
		count += wordLen
	}
	flush()
	return chunks
}
