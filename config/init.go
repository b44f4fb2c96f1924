package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/colenielsonauto/agent-arc/internal/logger"
	"github.com/colenielsonauto/agent-arc/internal/tracing"
)

type Config struct {
	AppConfig            *AppConfig
	Logger               *logger.Config
	Tracing              *tracing.JaegerConfig
	IdentificationConfig *IdentificationConfig
	CronConfig           *CronConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:            &AppConfig{},
		Logger:               &logger.Config{},
		Tracing:              &tracing.JaegerConfig{},
		IdentificationConfig: &IdentificationConfig{},
		CronConfig:           &CronConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading agent-arc config: %v", err)
	}

	return config, nil
}
