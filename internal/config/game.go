package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type GameConfig struct {
	MaxSessions     int           `env:"MAX_SESSIONS" envDefault:"1000"`
	SessionTTL      time.Duration `env:"SESSION_TTL" envDefault:"2h"`
	JanitorInterval time.Duration `env:"JANITOR_INTERVAL" envDefault:"1m"`
	DecisionBudget  time.Duration `env:"DECISION_BUDGET" envDefault:"15s"`

	// Cap on automatic step iterations per request, a guard against a
	// handler that never stops reporting progress.
	MaxAutoSteps int `env:"MAX_AUTO_STEPS" envDefault:"200"`
}

func LoadGame() (GameConfig, error) {
	var cfg GameConfig
	err := env.Parse(&cfg)
	return cfg, err
}
