package antifraude

import (
	"context"

	"github.com/marcelojr/enquetes/internal/domain"
)

// Noop representa uma estratégia de antifraude desabilitada.
type Noop struct{}

func NewNoop() Noop {
	return Noop{}
}

func (Noop) Validar(ctx context.Context, voto domain.RegistroVoto) error {
	// Implementação vazia usada quando o rate limit é desligado via config.
	return nil
}

var _ domain.Antifraude = Noop{}
