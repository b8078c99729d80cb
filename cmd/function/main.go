// Webhook entry point for serverless deployments behind an API gateway.
package main

import (
	"context"

	"github.com/okunev/financetracker/internal/bot"
	"github.com/okunev/financetracker/internal/config"
	"github.com/okunev/financetracker/internal/log"
	"github.com/okunev/financetracker/internal/repository"
	"github.com/okunev/financetracker/internal/vision"
)

// Request is the API gateway request envelope.
type Request struct {
	Body string `json:"body"`
}

// Response is the API gateway response envelope.
type Response struct {
	StatusCode int               `json:"statusCode"`
	Body       string            `json:"body"`
	Headers    map[string]string `json:"headers,omitempty"`
}

// Handler processes one webhook update per invocation.
func Handler(ctx context.Context, request Request) (*Response, error) {
	logger := log.New("function")

	cfg, err := config.Load()
	if err != nil {
		return errorResponse(err)
	}

	repo, closeRepo, err := repository.New(cfg)
	if err != nil {
		return errorResponse(err)
	}
	defer closeRepo()

	var extractor *vision.Client
	if cfg.OpenAIKey != "" {
		extractor = vision.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ExtractTimeout)
	}

	b, err := bot.New(cfg.TelegramToken, repo, extractor, logger.WithComponent("bot"), cfg.Currency)
	if err != nil {
		return errorResponse(err)
	}

	if err := b.HandleWebhook([]byte(request.Body)); err != nil {
		return errorResponse(err)
	}

	return &Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func errorResponse(err error) (*Response, error) {
	return &Response{
		StatusCode: 500,
		Body:       err.Error(),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}, nil
}

func main() {
	// Entry point for local smoke testing only; deployments invoke Handler.
}
