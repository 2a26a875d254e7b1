package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/EuricoCruz/token_gate/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// NewClient cria e testa a conexão com o Redis.
// O pool de conexões importa aqui: cada ciclo WATCH/MULTI/EXEC ocupa uma
// conexão exclusiva do pool até o EXEC, então requisições concorrentes nunca
// entrelaçam transações na mesma conexão.
func NewClient(cfg *config.Config) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.RedisHost, cfg.RedisPort)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	// Testa conexão com timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	return client, nil
}
