// Pacote enquetes implementa as regras de negócio das enquetes: criação,
// voto, edição, remoção e consulta sobre a coleção persistida.
package enquetes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/marcelojr/enquetes/internal/domain"
)

var (
	ErrValidacao            = errors.New("enquete invalida")
	ErrEnqueteNaoEncontrada = errors.New("enquete nao encontrada")
	ErrEnqueteEncerrada     = errors.New("enquete encerrada para votacao")
	ErrOpcaoNaoEncontrada   = errors.New("opcao nao encontrada")
)

// Service executa cada mutação como uma transação carregar-alterar-salvar
// sobre o EnqueteStore. O mutex mantém esse ciclo como seção crítica única;
// sem ele duas mutações concorrentes leriam o mesmo snapshot e a segunda
// gravação apagaria o efeito da primeira.
type Service struct {
	store      domain.EnqueteStore
	clock      domain.Clock
	antifraude domain.Antifraude

	mu sync.Mutex
}

func NewService(store domain.EnqueteStore, clock domain.Clock, antifraude domain.Antifraude) *Service {
	return &Service{
		store:      store,
		clock:      clock,
		antifraude: antifraude,
	}
}

// Criar valida a entrada, atribui o próximo ID (maior existente + 1) e as
// opções 1..N na ordem recebida, e persiste a coleção inteira.
func (s *Service) Criar(ctx context.Context, nova domain.NovaEnquete) (domain.Enquete, error) {
	pergunta := strings.TrimSpace(nova.Pergunta)
	opcoes := normalizarOpcoes(nova.Opcoes)

	if pergunta == "" {
		return domain.Enquete{}, fmt.Errorf("%w: pergunta obrigatoria", ErrValidacao)
	}
	if len(opcoes) < 2 {
		return domain.Enquete{}, fmt.Errorf("%w: minimo de duas opcoes", ErrValidacao)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return domain.Enquete{}, err
	}

	enquete := domain.Enquete{
		ID:        proximoID(coleta),
		Pergunta:  pergunta,
		Categoria: strings.TrimSpace(nova.Categoria),
		Ativa:     true,
		CriadaEm:  s.clock.Agora(),
	}
	for i, texto := range opcoes {
		enquete.Opcoes = append(enquete.Opcoes, domain.Opcao{
			ID:    domain.OpcaoID(i + 1),
			Texto: texto,
		})
	}

	coleta = append(coleta, enquete)
	if err := s.store.Salvar(ctx, coleta); err != nil {
		return domain.Enquete{}, err
	}

	return enquete, nil
}

func (s *Service) BuscarPorID(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return domain.Enquete{}, err
	}

	idx := indicePorID(coleta, id)
	if idx < 0 {
		return domain.Enquete{}, ErrEnqueteNaoEncontrada
	}
	return coleta[idx], nil
}

// Listar devolve a coleção na ordem armazenada (IDs crescentes) depois dos
// recortes de status, categoria e busca.
func (s *Service) Listar(ctx context.Context, filtro domain.Filtro) ([]domain.Enquete, error) {
	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return nil, err
	}
	return AplicarFiltro(coleta, filtro), nil
}

// Votar credita exatamente um voto na opção indicada. Não há identidade de
// eleitor nem deduplicação: cada chamada aceita é um voto.
func (s *Service) Votar(ctx context.Context, voto domain.RegistroVoto) (domain.Enquete, error) {
	if s.antifraude != nil {
		if err := s.antifraude.Validar(ctx, voto); err != nil {
			return domain.Enquete{}, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return domain.Enquete{}, err
	}

	idx := indicePorID(coleta, voto.EnqueteID)
	if idx < 0 {
		return domain.Enquete{}, ErrEnqueteNaoEncontrada
	}

	enquete := &coleta[idx]
	if !enquete.Ativa {
		return domain.Enquete{}, ErrEnqueteEncerrada
	}

	opcao := -1
	for i := range enquete.Opcoes {
		if enquete.Opcoes[i].ID == voto.OpcaoID {
			opcao = i
			break
		}
	}
	if opcao < 0 {
		return domain.Enquete{}, ErrOpcaoNaoEncontrada
	}

	enquete.Opcoes[opcao].Votos++
	enquete.TotalVotos++
	agora := s.clock.Agora()
	enquete.AtualizadaEm = &agora

	// Se Salvar falhar o snapshot alterado é descartado; a próxima operação
	// recarrega o estado anterior e nada foi confirmado.
	if err := s.store.Salvar(ctx, coleta); err != nil {
		return domain.Enquete{}, err
	}

	return *enquete, nil
}

// Atualizar aplica somente os campos presentes na Atualizacao; nil mantém o
// valor atual e valor explícito substitui, inclusive Ativa=false para
// encerrar ou true para reabrir a votação.
func (s *Service) Atualizar(ctx context.Context, id domain.EnqueteID, mudanca domain.Atualizacao) (domain.Enquete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return domain.Enquete{}, err
	}

	idx := indicePorID(coleta, id)
	if idx < 0 {
		return domain.Enquete{}, ErrEnqueteNaoEncontrada
	}

	enquete := &coleta[idx]
	if mudanca.Pergunta != nil {
		enquete.Pergunta = *mudanca.Pergunta
	}
	if mudanca.Categoria != nil {
		enquete.Categoria = *mudanca.Categoria
	}
	if mudanca.Ativa != nil {
		enquete.Ativa = *mudanca.Ativa
	}
	agora := s.clock.Agora()
	enquete.AtualizadaEm = &agora

	if err := s.store.Salvar(ctx, coleta); err != nil {
		return domain.Enquete{}, err
	}

	return *enquete, nil
}

// Remover exclui a enquete de forma definitiva e devolve o registro removido
// como confirmação para o chamador.
func (s *Service) Remover(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coleta, err := s.store.Carregar(ctx)
	if err != nil {
		return domain.Enquete{}, err
	}

	idx := indicePorID(coleta, id)
	if idx < 0 {
		return domain.Enquete{}, ErrEnqueteNaoEncontrada
	}

	removida := coleta[idx]
	coleta = append(coleta[:idx], coleta[idx+1:]...)

	if err := s.store.Salvar(ctx, coleta); err != nil {
		return domain.Enquete{}, err
	}

	return removida, nil
}

// proximoID varre a coleção por ser pequena; um contador monotônico daria o
// mesmo comportamento observável.
func proximoID(coleta []domain.Enquete) domain.EnqueteID {
	var maior domain.EnqueteID
	for _, enquete := range coleta {
		if enquete.ID > maior {
			maior = enquete.ID
		}
	}
	return maior + 1
}

func indicePorID(coleta []domain.Enquete, id domain.EnqueteID) int {
	for i := range coleta {
		if coleta[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizarOpcoes apara espaços e descarta entradas vazias preservando a
// ordem recebida.
func normalizarOpcoes(brutas []string) []string {
	opcoes := make([]string, 0, len(brutas))
	for _, texto := range brutas {
		texto = strings.TrimSpace(texto)
		if texto == "" {
			continue
		}
		opcoes = append(opcoes, texto)
	}
	return opcoes
}

var _ domain.EnqueteService = (*Service)(nil)
