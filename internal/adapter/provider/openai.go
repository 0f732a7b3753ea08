package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"techdocs/config"
	"techdocs/internal/port"
)

// OpenAIProvider implements port.Provider against the OpenAI HTTP API, or
// any compatible endpoint.
type OpenAIProvider struct {
	apiKey         string
	baseURL        string
	embeddingModel string
	pricing        map[string]port.ModelPricing
	client         *http.Client
}

type chatRequest struct {
	Model       string         `json:"model"`
	Messages    []port.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage apiUsage  `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage apiUsage  `json:"usage"`
	Error *apiError `json:"error,omitempty"`
}

type apiUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// NewOpenAIProvider builds a provider from configuration. The API key must
// be present in the configured environment variable.
func NewOpenAIProvider(cfg *config.Config) (port.Provider, error) {
	apiKey := cfg.APIKey()
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", cfg.LLM.APIKeyEnv)
	}

	return &OpenAIProvider{
		apiKey:         apiKey,
		baseURL:        "https://api.openai.com/v1",
		embeddingModel: cfg.LLM.EmbeddingModel,
		pricing: map[string]port.ModelPricing{
			cfg.LLM.Model:          {InputPer1M: cfg.Pricing.LLMModel.InputPer1M, OutputPer1M: cfg.Pricing.LLMModel.OutputPer1M},
			cfg.LLM.EmbeddingModel: {InputPer1M: cfg.Pricing.EmbeddingModel.InputPer1M},
			cfg.LLM.RerankModel:    {InputPer1M: cfg.Pricing.RerankModel.InputPer1M, OutputPer1M: cfg.Pricing.RerankModel.OutputPer1M},
		},
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// GenerateText runs one chat completion and returns the text with the
// API's reported token usage.
func (p *OpenAIProvider) GenerateText(model string, messages []port.Message, temperature float64) (string, port.Usage, error) {
	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
	}

	var chatResp chatResponse
	if err := p.post("/chat/completions", reqBody, &chatResp); err != nil {
		return "", port.Usage{}, err
	}
	if chatResp.Error != nil {
		return "", port.Usage{}, fmt.Errorf("API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", port.Usage{}, fmt.Errorf("API returned no choices")
	}

	usage := port.Usage{
		InputTokens:  chatResp.Usage.PromptTokens,
		OutputTokens: chatResp.Usage.CompletionTokens,
	}
	return chatResp.Choices[0].Message.Content, usage, nil
}

// Embed generates embeddings in batches, accumulating the API's reported
// token usage across batches.
func (p *OpenAIProvider) Embed(texts []string) ([][]float32, port.Usage, error) {
	if len(texts) == 0 {
		return nil, port.Usage{}, nil
	}

	const maxBatch = 100
	var allEmbeddings [][]float32
	var usage port.Usage

	for i := 0; i < len(texts); i += maxBatch {
		end := i + maxBatch
		if end > len(texts) {
			end = len(texts)
		}

		embeddings, batchUsage, err := p.embedBatch(texts[i:end])
		if err != nil {
			return nil, port.Usage{}, err
		}
		allEmbeddings = append(allEmbeddings, embeddings...)
		usage.Add(batchUsage)
	}

	return allEmbeddings, usage, nil
}

func (p *OpenAIProvider) embedBatch(texts []string) ([][]float32, port.Usage, error) {
	reqBody := embeddingRequest{
		Input: texts,
		Model: p.embeddingModel,
	}

	var embResp embeddingResponse
	if err := p.post("/embeddings", reqBody, &embResp); err != nil {
		return nil, port.Usage{}, err
	}
	if embResp.Error != nil {
		return nil, port.Usage{}, fmt.Errorf("API error: %s", embResp.Error.Message)
	}

	embeddings := make([][]float32, len(texts))
	for _, data := range embResp.Data {
		if data.Index < len(embeddings) {
			embeddings[data.Index] = data.Embedding
		}
	}

	return embeddings, port.Usage{InputTokens: embResp.Usage.PromptTokens}, nil
}

// Pricing looks up the price table for a model. Unknown models get a zero
// table so cost estimates degrade to zero instead of failing a query.
func (p *OpenAIProvider) Pricing(model string) port.ModelPricing {
	return p.pricing[model]
}

// Name identifies this provider.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

func (p *OpenAIProvider) post(path string, reqBody, out any) error {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequest("POST", p.baseURL+path, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		bodyPreview := string(body)
		if len(bodyPreview) > 200 {
			bodyPreview = bodyPreview[:200]
		}
		return fmt.Errorf("failed to parse response (body: %s): %w", bodyPreview, err)
	}

	return nil
}
