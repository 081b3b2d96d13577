package main

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/Fepozopo/pixedit/pkg/advisor"
	"github.com/Fepozopo/pixedit/pkg/config"
	"github.com/Fepozopo/pixedit/pkg/editor"
	"github.com/Fepozopo/pixedit/pkg/logging"
	"github.com/Fepozopo/pixedit/pkg/prompt"
)

// app is everything a subcommand needs, built once from configuration.
type app struct {
	cfg *config.Config
	log *logging.Logger
	ed  *editor.Editor
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadPath(path)
	}
	cfg, _, err := config.Load()
	return cfg, err
}

func newApp(configPath string, offline bool) (*app, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	log, err := cfg.Logger()
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	formats, err := editor.ParseFormats(cfg.Limits.AllowedFormats)
	if err != nil {
		log.Close()
		return nil, err
	}

	var adv advisor.Advisor = advisor.None
	if cfg.Advisor.APIKey != "" && !offline {
		adv = advisor.NewOpenAI(advisor.OpenAIConfig{
			APIKey:    cfg.Advisor.APIKey,
			BaseURL:   cfg.Advisor.BaseURL,
			Model:     cfg.Advisor.Model,
			MaxTokens: cfg.Advisor.MaxTokens,
			Timeout:   cfg.Advisor.Timeout,
		}, log)
	} else {
		log.WithTag("main").Debug("no advisor configured, keyword matching only")
	}

	ed := editor.New(editor.Options{
		Pipeline: cfg.Pipeline(),
		Advisor:  adv,
		Guard:    prompt.NewBlockList(),
		Limits: editor.Limits{
			MaxFileSize:    cfg.Limits.MaxFileSize,
			MaxWidth:       cfg.Limits.MaxWidth,
			MaxHeight:      cfg.Limits.MaxHeight,
			MaxPixels:      cfg.Limits.MaxPixels,
			AllowedFormats: lo.Uniq(formats),
		},
		Logger: log,
	})
	return &app{cfg: cfg, log: log, ed: ed}, nil
}

func (a *app) Close() { a.log.Close() }
