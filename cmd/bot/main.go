package main

import (
	"os"

	"github.com/okunev/financetracker/internal/bot"
	"github.com/okunev/financetracker/internal/config"
	"github.com/okunev/financetracker/internal/log"
	"github.com/okunev/financetracker/internal/repository"
	"github.com/okunev/financetracker/internal/vision"
)

func main() {
	logger := log.New("main")

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	repo, closeRepo, err := repository.New(cfg)
	if err != nil {
		logger.Error("init repository", "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	var extractor *vision.Client
	if cfg.OpenAIKey != "" {
		extractor = vision.NewClient(cfg.OpenAIKey, cfg.OpenAIModel, cfg.ExtractTimeout)
	} else {
		logger.Warn("OPENAI_API_KEY not set, receipt recognition disabled")
	}

	b, err := bot.New(cfg.TelegramToken, repo, extractor, logger.WithComponent("bot"), cfg.Currency)
	if err != nil {
		logger.Error("init bot", "error", err)
		os.Exit(1)
	}

	if err := b.Start(); err != nil {
		logger.Error("bot stopped", "error", err)
		os.Exit(1)
	}
}
