// Package hfsentiment classifies text through the Hugging Face inference
// API. Unavailability is reported as a plain error; the scoring layer
// substitutes a neutral default instead of propagating it.
package hfsentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/clipscout/clipscout/internal/types"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models/"
	defaultModel   = "tabularisai/multilingual-sentiment-analysis"
	requestTimeout = 30 * time.Second
)

type Adapter struct {
	token   string
	model   string
	baseURL string
	client  *http.Client
}

func New(token, model, baseURL string) *Adapter {
	if model == "" {
		model = defaultModel
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{
		token:   token,
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: requestTimeout},
	}
}

// Classify sends the text to the inference API and returns the top-scoring
// label. The API answers either a flat label list or one list per input.
func (a *Adapter) Classify(ctx context.Context, text string) (types.Sentiment, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return types.Sentiment{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+a.model, bytes.NewReader(payload))
	if err != nil {
		return types.Sentiment{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return types.Sentiment{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return types.Sentiment{}, fmt.Errorf("classifier: %s: %s", resp.Status, string(b))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return types.Sentiment{}, err
	}
	return parseResponse(body)
}

func parseResponse(body []byte) (types.Sentiment, error) {
	var nested [][]types.Sentiment
	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		return top(nested[0])
	}
	var flat []types.Sentiment
	if err := json.Unmarshal(body, &flat); err == nil {
		return top(flat)
	}
	return types.Sentiment{}, errors.New("classifier: unrecognized response shape")
}

func top(labels []types.Sentiment) (types.Sentiment, error) {
	if len(labels) == 0 {
		return types.Sentiment{}, errors.New("classifier: empty label list")
	}
	best := labels[0]
	for _, l := range labels[1:] {
		if l.Score > best.Score {
			best = l
		}
	}
	return best, nil
}
