package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
	"github.com/EuricoCruz/token_gate/internal/domain/repository"
)

// attemptTimeout limita um ciclo completo watch+read+compute+commit.
// Um estouro aqui é falha de store (o watch descarta a transação pendente),
// nunca uma negação de rate limit.
const attemptTimeout = 2 * time.Second

// watchFunc executa fn sob WATCH das chaves dadas. É um campo da struct para
// que os testes consigam simular conflitos de commit sem um Redis real.
type watchFunc func(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error

// RedisStorage implementa a interface repository.Storage usando Redis como backend.
// A atomicidade vem do protocolo WATCH/MULTI/EXEC: cada decisão lê o estado sob
// WATCH, recalcula com a política de refill e só comita se a chave não mudou
// desde a leitura. O Redis não oferece compare-and-swap nativo para um registro
// estruturado, então a concorrência é resolvida de forma otimista.
type RedisStorage struct {
	client     *redis.Client
	policy     entity.Policy
	maxRetries int
	logger     *slog.Logger
	watch      watchFunc
}

// NewRedisStorage cria uma nova instância de RedisStorage usando dependency injection.
// A policy e maxRetries já chegam validados pela configuração de startup.
func NewRedisStorage(client *redis.Client, policy entity.Policy, maxRetries int, logger *slog.Logger) *RedisStorage {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStorage{
		client:     client,
		policy:     policy,
		maxRetries: maxRetries,
		logger:     logger,
		watch:      client.Watch,
	}
}

// Close fecha a conexão com o Redis
func (r *RedisStorage) Close() error {
	return r.client.Close()
}

// Take implementa o método da interface Storage.
// Executa o ciclo otimista WATCH → GET → refill/consume → MULTI/SET → EXEC.
// Um EXEC rejeitado significa que outra requisição comitou a mesma chave
// primeiro; o ciclo reinicia do zero com um `now` novo, até maxRetries
// tentativas. Esgotar as tentativas nega a requisição (fail closed): sob
// contenção pesada é mais seguro sub-admitir do que arriscar double-spend
// ou uma tempestade de retries.
func (r *RedisStorage) Take(ctx context.Context, key entity.BucketKey) (*repository.Decision, error) {
	keyStr := key.String()

	for attempt := 1; attempt <= r.maxRetries; attempt++ {
		decision, err := r.tryTake(ctx, keyStr)
		if err == nil {
			return decision, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return nil, fmt.Errorf("failed to take token for key %s: %w", keyStr, err)
		}
		// Conflito: a chave mudou entre o WATCH e o EXEC. O estado que lemos
		// já era obsoleto; a próxima volta lê o estado comitado pelo vencedor.
	}

	r.logger.Warn("optimistic retries exhausted, denying request",
		"key", keyStr,
		"attempts", r.maxRetries,
	)
	return &repository.Decision{
		Allowed: false,
		Limit:   r.policy.Capacity,
	}, nil
}

// tryTake executa um único ciclo watch/read/compute/commit.
// Retorna redis.TxFailedErr quando o commit perde a corrida.
func (r *RedisStorage) tryTake(ctx context.Context, key string) (*repository.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, attemptTimeout)
	defer cancel()

	var decision *repository.Decision

	err := r.watch(ctx, func(tx *redis.Tx) error {
		state, err := r.readState(ctx, tx, key)
		if err != nil {
			return err
		}

		// O relógio é lido dentro do ciclo: uma retentativa mede as horas
		// decorridas contra o estado que ela realmente leu.
		now := time.Now().UTC()

		if state == nil {
			fresh := entity.NewBucketState(r.policy, now)
			state = &fresh
		}

		next, ok := state.Consume(now, r.policy)
		if !ok {
			// Caminho somente-leitura: nada é enfileirado e o watch é
			// liberado no retorno. Negar não escreve nada — avançar a
			// âncora de refill aqui zeraria o relógio do cliente.
			decision = &repository.Decision{
				Allowed:         false,
				RemainingTokens: 0,
				Limit:           r.policy.Capacity,
				RetryAfter:      state.RetryAfter(now, r.policy),
			}
			return nil
		}

		payload, err := EncodeBucketState(next)
		if err != nil {
			return err
		}

		// SET enfileirado no MULTI; o EXEC só aplica se a chave observada
		// não mudou desde o WATCH.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err != nil {
			return err
		}

		decision = &repository.Decision{
			Allowed:         true,
			RemainingTokens: next.Tokens,
			Limit:           r.policy.Capacity,
		}
		return nil
	}, key)

	if err != nil {
		return nil, err
	}

	return decision, nil
}

// readState lê e decodifica o estado atual dentro do contexto do WATCH.
// Ausente e corrompido convergem para nil ("bucket novo"), mas corrupção
// nunca passa em silêncio: indica esquema trocado ou escrita externa.
func (r *RedisStorage) readState(ctx context.Context, tx *redis.Tx, key string) (*entity.BucketState, error) {
	payload, err := tx.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	state, err := DecodeBucketState(payload)
	if err != nil {
		r.logger.Warn("corrupt bucket state, treating as fresh bucket",
			"key", key,
			"error", err,
		)
		return nil, nil
	}

	return &state, nil
}
