package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"classroom/models"
)

type compatibleRequest struct {
	Model       string        `json:"model"`
	Messages    []models.Turn `json:"messages"`
	Temperature float32       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type compatibleResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// CompatibleService talks to any endpoint that speaks the OpenAI
// /chat/completions wire format, such as Perplexity.
type CompatibleService struct {
	client      *resty.Client
	model       string
	temperature float32
}

func NewCompatibleService(baseURL, apiKey, model string, temperature float32) (*CompatibleService, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("COMPLETION_BASE_URL is not set")
	}
	if apiKey == "" {
		return nil, errors.New("API key is not set")
	}
	if model == "" {
		return nil, errors.New("model is not set")
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetAuthToken(apiKey).
		SetHeader("Content-Type", "application/json")

	return &CompatibleService{client: client, model: model, temperature: temperature}, nil
}

func (s *CompatibleService) Complete(ctx context.Context, turns []models.Turn) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(compatibleRequest{
			Model:       s.model,
			Messages:    turns,
			Temperature: s.temperature,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", err
	}

	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("completion failed, status: %d", resp.StatusCode())
	}

	var result compatibleResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(result.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
