package huggingface

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatbot-be/pkg/llm"
)

const defaultBaseURL = "https://api-inference.huggingface.co"

// HuggingFaceProvider calls the Hugging Face Inference API for
// text2text-generation models such as google/flan-t5-base.
type HuggingFaceProvider struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// Request payload structure (HF text2text-generation task)
type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
	Options    generateOptions    `json:"options"`
}

type generateParameters struct {
	MaxNewTokens      int     `json:"max_new_tokens,omitempty"`
	NumBeams          int     `json:"num_beams,omitempty"`
	NoRepeatNgramSize int     `json:"no_repeat_ngram_size,omitempty"`
	TopK              int     `json:"top_k,omitempty"`
	TopP              float64 `json:"top_p,omitempty"`
	DoSample          bool    `json:"do_sample"`
	EarlyStopping     bool    `json:"early_stopping"`
}

type generateOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

type generateResponse []struct {
	GeneratedText string `json:"generated_text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHuggingFaceProvider(apiKey, baseURL, model string) *HuggingFaceProvider {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &HuggingFaceProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		// The free inference tier can queue for a while when the model is
		// cold; the request context still cancels earlier if the caller
		// goes away.
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *HuggingFaceProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	opts := llm.DefaultOptions()
	opts.Model = p.model
	for _, o := range options {
		o(opts)
	}

	reqBody := generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:      opts.MaxNewTokens,
			NumBeams:          opts.NumBeams,
			NoRepeatNgramSize: opts.NoRepeatNgramSize,
			TopK:              opts.TopK,
			TopP:              opts.TopP,
			DoSample:          opts.DoSample,
			EarlyStopping:     opts.EarlyStopping,
		},
		Options: generateOptions{WaitForModel: true},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s", p.baseURL, opts.Model)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(bodyBytes, &apiErr) == nil && apiErr.Error != "" {
			return "", fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, apiErr.Error)
		}
		return "", fmt.Errorf("huggingface api error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var genResp generateResponse
	if err := json.Unmarshal(bodyBytes, &genResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp) == 0 {
		return "", fmt.Errorf("empty generation from huggingface api")
	}

	return genResp[0].GeneratedText, nil
}
