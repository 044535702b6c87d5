// Package agent wraps the OpenAI-compatible text generation, vision and
// embedding endpoints the pipeline consumes. Everything here is a thin,
// stateless client; refusal detection and parsing happen downstream.
package agent

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// Config holds connection and model selection for the agent client.
type Config struct {
	BaseURL             string
	APIKey              string
	ChatModel           string
	VisionModel         string
	EmbeddingModel      string
	EmbeddingDimensions int
	Timeout             time.Duration
}

// Client talks to an OpenAI-compatible API.
type Client struct {
	http           *resty.Client
	chatModel      string
	visionModel    string
	embeddingModel string
	dimensions     int
	chatURL        string
	embeddingsURL  string
}

// New creates an agent client. The zero timeout defaults to 60s.
func New(cfg *Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &Client{
		http:           client,
		chatModel:      cfg.ChatModel,
		visionModel:    cfg.VisionModel,
		embeddingModel: cfg.EmbeddingModel,
		dimensions:     cfg.EmbeddingDimensions,
		chatURL:        baseURL + "/chat/completions",
		embeddingsURL:  baseURL + "/embeddings",
	}
}

// EmbeddingModel reports the model used for vectors. Queries and indexed
// recipes must embed with the same model for distances to mean anything.
func (c *Client) EmbeddingModel() string {
	return c.embeddingModel
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string, or a content-part list for vision
}

type textContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type imageContent struct {
	Type     string   `json:"type"`
	ImageURL imageURL `json:"image_url"`
}

type imageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Generate runs one synchronous chat completion with a system instruction
// and user content, returning the raw completion text.
func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
	}

	var resp chatResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.chatURL)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}

	if err := checkResponse(httpResp, resp.Error); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices (status %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

const recognizeInstruction = "You are a document transcription agent. Transcribe all text visible in " +
	"the image exactly as written, preserving line breaks. If the image contains no legible text, " +
	"describe briefly what it shows instead."

// Recognize extracts the raw text visible in an image. Images without legible
// recipe content yield low-signal text rather than an error; deciding that a
// submission is not a recipe is the extractor's job.
func (c *Client) Recognize(ctx context.Context, image []byte) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s",
		http.DetectContentType(image),
		base64.StdEncoding.EncodeToString(image))

	req := chatRequest{
		Model: c.visionModel,
		Messages: []chatMessage{
			{Role: "system", Content: recognizeInstruction},
			{Role: "user", Content: []interface{}{
				textContent{Type: "text", Text: "Transcribe this recipe document."},
				imageContent{Type: "image_url", ImageURL: imageURL{URL: dataURL, Detail: "auto"}},
			}},
		},
		MaxTokens: 2000,
	}

	var resp chatResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.chatURL)
	if err != nil {
		return "", fmt.Errorf("vision request failed: %w", err)
	}

	if err := checkResponse(httpResp, resp.Error); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("vision request returned no choices (status %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// Embed returns the embedding vector for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	req := embeddingRequest{
		Model:      c.embeddingModel,
		Input:      []string{text},
		Dimensions: c.dimensions,
	}

	var resp embeddingResponse
	httpResp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.embeddingsURL)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return nil, fmt.Errorf("embedding API error (status %d): %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return nil, fmt.Errorf("embedding API error: status %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding API returned no data")
	}

	return resp.Data[0].Embedding, nil
}

func checkResponse(httpResp *resty.Response, apiErr *apiError) error {
	if httpResp.StatusCode() >= 200 && httpResp.StatusCode() < 300 {
		if apiErr != nil {
			return fmt.Errorf("API error: %s", apiErr.Message)
		}
		return nil
	}
	if apiErr != nil {
		return fmt.Errorf("API error (status %d): %s", httpResp.StatusCode(), apiErr.Message)
	}
	return fmt.Errorf("API error: status %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
}
