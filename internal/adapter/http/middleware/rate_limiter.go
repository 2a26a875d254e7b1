package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/EuricoCruz/token_gate/internal/usecase/admit_request"
)

// identityHeader é o header que carrega a identidade do cliente.
// A extração real de identidade é um colaborador externo; aqui só lemos o
// valor opaco que ele já colocou na requisição.
const identityHeader = "Bearer"

// IdentityFunc extrai a identidade opaca do cliente de uma requisição.
// Retornar vazio significa requisição não autenticada.
type IdentityFunc func(r *http.Request) string

// BearerIdentity é o extrator padrão: lê o header "Bearer" literalmente.
func BearerIdentity(r *http.Request) string {
	return r.Header.Get(identityHeader)
}

// UseCase interface para permitir mock em testes
type UseCase interface {
	Execute(ctx context.Context, input admit_request.Input) (*admit_request.Output, error)
}

// AdmissionMiddleware decide se cada requisição entra ou não.
// Falha de store é um ponto de política explícito: o padrão é fail-closed
// (503, nega durante uma queda do Redis); failOpen=true inverte e deixa
// passar sem decisão de limite.
type AdmissionMiddleware struct {
	useCase  UseCase
	identity IdentityFunc
	failOpen bool
	logger   *slog.Logger
}

func NewAdmissionMiddleware(useCase UseCase, identity IdentityFunc, failOpen bool, logger *slog.Logger) *AdmissionMiddleware {
	if identity == nil {
		identity = BearerIdentity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AdmissionMiddleware{
		useCase:  useCase,
		identity: identity,
		failOpen: failOpen,
		logger:   logger,
	}
}

func (m *AdmissionMiddleware) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		// 1. Extrai a identidade; sem identidade não há acesso ao store.
		identity := m.identity(r)
		if identity == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// 2. Executa a decisão de admissão
		output, err := m.useCase.Execute(ctx, admit_request.Input{Identity: identity})
		if err != nil {
			m.logger.Error("admission decision failed", "error", err, "fail_open", m.failOpen)
			if m.failOpen {
				// Política fail-open: indisponibilidade do store não barra
				// tráfego, ao custo de não aplicar limite nenhum.
				next.ServeHTTP(w, r)
				return
			}
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		m.writeRateLimitHeaders(w, output)

		// 3. Negado: 429 com corpo vazio, nada foi escrito no store.
		if !output.Allowed {
			m.logger.Info("request denied by rate limit",
				"limit", output.Limit,
				"retry_after", output.RetryAfter,
			)
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}

		// 4. Admitido: um token consumido, segue para o próximo handler.
		next.ServeHTTP(w, r)
	})
}

// writeRateLimitHeaders expõe o resultado da decisão para o cliente.
func (m *AdmissionMiddleware) writeRateLimitHeaders(w http.ResponseWriter, output *admit_request.Output) {
	w.Header().Set("X-RateLimit-Limit", strconv.FormatInt(output.Limit, 10))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(output.RemainingTokens, 10))

	if output.RetryAfter > 0 {
		// Retry-After é em segundos inteiros; arredonda para cima para que
		// o cliente nunca volte cedo demais.
		seconds := int64(math.Ceil(output.RetryAfter.Seconds()))
		w.Header().Set("Retry-After", strconv.FormatInt(seconds, 10))
	}
}
