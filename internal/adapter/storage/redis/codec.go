package redis

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/EuricoCruz/token_gate/internal/domain/entity"
)

// ErrCorruptState indica que o valor lido do Redis não é um BucketState válido.
// Um registro corrompido é distinguível de um registro ausente: quem chama
// decide como recuperar, mas nunca de forma silenciosa.
var ErrCorruptState = errors.New("corrupt bucket state")

// EncodeBucketState serializa o estado para o formato de armazenamento (JSON).
// O formato é autodescritivo e faz round-trip exato:
// DecodeBucketState(EncodeBucketState(s)) == s para todo estado válido.
func EncodeBucketState(state entity.BucketState) ([]byte, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("failed to encode bucket state: %w", err)
	}
	return payload, nil
}

// DecodeBucketState reconstrói o estado a partir dos bytes armazenados.
// Bytes malformados ou estrangeiros — JSON inválido, campos ausentes, contagem
// negativa — retornam ErrCorruptState em vez de um default silencioso.
func DecodeBucketState(payload []byte) (entity.BucketState, error) {
	var state entity.BucketState
	if err := json.Unmarshal(payload, &state); err != nil {
		return entity.BucketState{}, fmt.Errorf("%w: %v", ErrCorruptState, err)
	}

	// Todo registro escrito por este sistema tem âncora de refill; um zero
	// aqui significa JSON de outro esquema ocupando a chave.
	if state.LastRefill.IsZero() {
		return entity.BucketState{}, fmt.Errorf("%w: missing last_updated", ErrCorruptState)
	}
	if state.Tokens < 0 {
		return entity.BucketState{}, fmt.Errorf("%w: negative token count %d", ErrCorruptState, state.Tokens)
	}

	return state, nil
}
