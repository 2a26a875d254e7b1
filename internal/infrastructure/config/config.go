package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
)

// Limites do bound de retries otimistas. Fora dessa faixa ou a contenção
// vira negação cedo demais, ou uma tempestade de retries contra o Redis.
const (
	minOCCRetries = 3
	maxOCCRetries = 5
)

type Config struct {
	// Server
	ServerPort int

	// Redis
	RedisHost     string
	RedisPort     int
	RedisPassword string
	RedisDB       int

	// Token bucket (política única, fixada no startup)
	MaxTokens         int64
	RefillRatePerHour int64

	// Concorrência otimista
	OCCMaxRetries int

	// Política para falha de store: false = fail-closed (503)
	FailOpen bool
}

// Policy converte a configuração validada na política de domínio.
func (c *Config) Policy() entity.Policy {
	return entity.Policy{
		Capacity:    c.MaxTokens,
		RatePerHour: c.RefillRatePerHour,
	}
}

func Load() (*Config, error) {
	// Limpa configurações anteriores do viper
	viper.Reset()

	// Configura viper
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("")

	// Defaults da política de rate limit
	viper.SetDefault("MAX_TOKENS", 10)
	viper.SetDefault("REFILL_RATE_PER_HOUR", 1)
	viper.SetDefault("OCC_MAX_RETRIES", 5)
	viper.SetDefault("FAIL_OPEN", false)
	viper.SetDefault("REDIS_PORT", 6379)

	// Tenta ler .env (ignora erro se não existir, usa env vars)
	_ = viper.ReadInConfig()

	cfg := &Config{
		ServerPort:        viper.GetInt("SERVER_PORT"),
		RedisHost:         viper.GetString("REDIS_HOST"),
		RedisPort:         viper.GetInt("REDIS_PORT"),
		RedisPassword:     viper.GetString("REDIS_PASSWORD"),
		RedisDB:           viper.GetInt("REDIS_DB"),
		MaxTokens:         viper.GetInt64("MAX_TOKENS"),
		RefillRatePerHour: viper.GetInt64("REFILL_RATE_PER_HOUR"),
		OCCMaxRetries:     viper.GetInt("OCC_MAX_RETRIES"),
		FailOpen:          viper.GetBool("FAIL_OPEN"),
	}

	// Valida tudo aqui, uma vez: o hot path assume valores positivos.
	if cfg.ServerPort <= 0 {
		return nil, fmt.Errorf("SERVER_PORT is required and must be positive")
	}
	if cfg.RedisHost == "" {
		return nil, fmt.Errorf("REDIS_HOST is required")
	}
	if err := cfg.Policy().Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit policy: %w", err)
	}
	if cfg.OCCMaxRetries < minOCCRetries || cfg.OCCMaxRetries > maxOCCRetries {
		return nil, fmt.Errorf("OCC_MAX_RETRIES must be between %d and %d, got %d",
			minOCCRetries, maxOCCRetries, cfg.OCCMaxRetries)
	}

	return cfg, nil
}
