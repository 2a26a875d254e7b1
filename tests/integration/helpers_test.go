//go:build integration
// +build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	redisAdapter "github.com/EuricoCruz/token_gate/internal/adapter/storage/redis"
	"github.com/EuricoCruz/token_gate/internal/domain/entity"
)

// testPolicy espelha os defaults de produção: 10 tokens, 1 por hora.
var testPolicy = entity.Policy{Capacity: 10, RatePerHour: 1}

// setupRedis conecta no Redis de teste e limpa todos os dados
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	})

	ctx := context.Background()

	// Testa conexão
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Limpa TODOS os dados antes de cada teste
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush Redis: %v", err)
	}

	// Cleanup: fecha conexão após teste
	t.Cleanup(func() {
		client.Close()
	})

	return client
}

// newStorage monta o storage sob teste com o bound de retries de produção.
func newStorage(t *testing.T, client *redis.Client) *redisAdapter.RedisStorage {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return redisAdapter.NewRedisStorage(client, testPolicy, 5, logger)
}

// seedState grava um BucketState diretamente no Redis, fora do transactor.
func seedState(t *testing.T, client *redis.Client, key entity.BucketKey, state entity.BucketState) {
	t.Helper()

	payload, err := redisAdapter.EncodeBucketState(state)
	if err != nil {
		t.Fatalf("Failed to encode seed state: %v", err)
	}
	if err := client.Set(context.Background(), key.String(), payload, 0).Err(); err != nil {
		t.Fatalf("Failed to seed state: %v", err)
	}
}

// readState lê e decodifica o estado atual de uma chave.
func readState(t *testing.T, client *redis.Client, key entity.BucketKey) entity.BucketState {
	t.Helper()

	payload, err := client.Get(context.Background(), key.String()).Bytes()
	if err != nil {
		t.Fatalf("Failed to read state for %s: %v", key.String(), err)
	}
	state, err := redisAdapter.DecodeBucketState(payload)
	if err != nil {
		t.Fatalf("Failed to decode state for %s: %v", key.String(), err)
	}
	return state
}

// rawState lê os bytes crus da chave, para comparações byte a byte.
func rawState(t *testing.T, client *redis.Client, key entity.BucketKey) []byte {
	t.Helper()

	payload, err := client.Get(context.Background(), key.String()).Bytes()
	if err != nil {
		t.Fatalf("Failed to read raw state for %s: %v", key.String(), err)
	}
	return payload
}

// hoursAgo devolve um timestamp UTC deslocado para trás.
func hoursAgo(h int) time.Time {
	return time.Now().UTC().Add(-time.Duration(h) * time.Hour)
}
