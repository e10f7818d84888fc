package domain

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("registro nao encontrado")

// EnqueteStore persiste a coleção inteira de enquetes. Não existe acesso
// parcial ou indexado: Carregar devolve tudo e Salvar substitui tudo, de
// forma atômica do ponto de vista de quem lê.
type EnqueteStore interface {
	Carregar(ctx context.Context) ([]Enquete, error)
	Salvar(ctx context.Context, enquetes []Enquete) error
}

type FiltroStatus string

const (
	FiltroStatusTodos      FiltroStatus = ""
	FiltroStatusAtivas     FiltroStatus = "active"
	FiltroStatusEncerradas FiltroStatus = "closed"
)

// Filtro descreve os recortes aplicados na listagem: status, categoria exata
// e busca por substring da pergunta (case-insensitive).
type Filtro struct {
	Status    FiltroStatus
	Categoria string
	Busca     string
}

type NovaEnquete struct {
	Pergunta  string
	Opcoes    []string
	Categoria string
}

type RegistroVoto struct {
	EnqueteID EnqueteID
	OpcaoID   OpcaoID
	OrigemIP  string
	UserAgent string
}

// Atualizacao usa ponteiros para que campo ausente (nil) signifique "manter o
// valor atual" e valor explícito (inclusive false ou string vazia) seja
// aplicado. Evita a ambiguidade do merge por coalescência.
type Atualizacao struct {
	Pergunta  *string
	Categoria *string
	Ativa     *bool
}

type EnqueteService interface {
	Criar(ctx context.Context, nova NovaEnquete) (Enquete, error)
	BuscarPorID(ctx context.Context, id EnqueteID) (Enquete, error)
	Listar(ctx context.Context, filtro Filtro) ([]Enquete, error)
	Votar(ctx context.Context, voto RegistroVoto) (Enquete, error)
	Atualizar(ctx context.Context, id EnqueteID, mudanca Atualizacao) (Enquete, error)
	Remover(ctx context.Context, id EnqueteID) (Enquete, error)
}

type Antifraude interface {
	Validar(ctx context.Context, voto RegistroVoto) error
}

type Clock interface {
	Agora() time.Time
}
