package logger

import (
	"log/slog"
	"os"
)

// New cria o logger estruturado de produção. Os avisos de estado corrompido
// e de esgotamento de retries saem por aqui em nível Warn.
func New() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", "token_gate")
}

// NewDevelopment cria um logger mais verboso para desenvolvimento
func NewDevelopment() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}
