package main

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// config is the process configuration. Environment values are read first;
// flags given on the command line win.
type config struct {
	Addr         string `env:"BUBBLE_ADDR" envDefault:"127.0.0.1:8787"`
	SettingsPath string `env:"BUBBLE_SETTINGS" envDefault:"data/settings.json"`
	JournalPath  string `env:"BUBBLE_JOURNAL" envDefault:"data/journal.db"`
	Headless     bool   `env:"BUBBLE_HEADLESS"`
	Seed         uint64 `env:"BUBBLE_SEED"`
	Sender       string `env:"BUBBLE_SENDER" envDefault:"Explorer"`
	Letter       string `env:"BUBBLE_LETTER" envDefault:"Hello from far away! What is the ocean like where you are?"`

	GeminiKey   string `env:"GEMINI_API_KEY"`
	GeminiModel string `env:"GEMINI_MODEL"`
}

func loadConfig(args []string) (config, error) {
	var cfg config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	fs := flag.NewFlagSet("bubblevoyage", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "feed listen address (empty disables the feed)")
	fs.StringVar(&cfg.SettingsPath, "settings", cfg.SettingsPath, "settings file")
	fs.StringVar(&cfg.JournalPath, "db", cfg.JournalPath, "journal database (empty disables the journal)")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "run without the desktop viewer")
	fs.Uint64Var(&cfg.Seed, "seed", cfg.Seed, "simulation seed (0 = clock)")
	fs.StringVar(&cfg.Sender, "name", cfg.Sender, "sender name for letters sealed in the viewer")
	fs.StringVar(&cfg.Letter, "letter", cfg.Letter, "letter sealed in the viewer")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}
