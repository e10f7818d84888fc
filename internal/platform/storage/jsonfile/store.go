// Pacote jsonfile persiste a coleção de enquetes como um array JSON indentado
// em um único arquivo, o backend padrão e o único estado durável do serviço.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// Store implementa domain.EnqueteStore sobre um arquivo JSON. Salvar escreve
// em arquivo temporário no mesmo diretório e renomeia por cima do destino;
// quem lê nunca observa uma coleção parcialmente escrita.
type Store struct {
	caminho string
	logger  *slog.Logger
}

func New(caminho string, logger *slog.Logger) *Store {
	return &Store{caminho: caminho, logger: logger}
}

// Carregar devolve a coleção inteira. Arquivo ausente, ilegível ou corrompido
// vira coleção vazia: tolera a primeira execução sem tratar como erro fatal,
// mas cada caso gera um log próprio para diagnóstico.
func (s *Store) Carregar(ctx context.Context) ([]domain.Enquete, error) {
	dados, err := os.ReadFile(s.caminho)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("arquivo de enquetes inacessivel, assumindo colecao vazia", "caminho", s.caminho, "err", err)
		}
		return []domain.Enquete{}, nil
	}

	var coleta []domain.Enquete
	if err := json.Unmarshal(dados, &coleta); err != nil {
		s.logger.Warn("arquivo de enquetes corrompido, assumindo colecao vazia", "caminho", s.caminho, "err", err)
		return []domain.Enquete{}, nil
	}

	return coleta, nil
}

// Salvar substitui a coleção inteira de forma atômica. Falha aqui significa
// que a transação não foi confirmada; o chamador descarta a mutação.
func (s *Store) Salvar(ctx context.Context, coleta []domain.Enquete) error {
	inicio := time.Now()

	if coleta == nil {
		coleta = []domain.Enquete{}
	}

	dados, err := json.MarshalIndent(coleta, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: serializar colecao: %w", err)
	}

	dir := filepath.Dir(s.caminho)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("jsonfile: criar diretorio %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "enquetes-*.json")
	if err != nil {
		return fmt.Errorf("jsonfile: criar arquivo temporario: %w", err)
	}

	if _, err := tmp.Write(dados); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: escrever arquivo temporario: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: fechar arquivo temporario: %w", err)
	}

	// Rename no mesmo sistema de arquivos é atômico; o destino sempre contém
	// ou a coleção antiga ou a nova, nunca uma mistura.
	if err := os.Rename(tmp.Name(), s.caminho); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: substituir %s: %w", s.caminho, err)
	}

	metrics.ObserveSalvarDuration(time.Since(inicio).Seconds())
	return nil
}

var _ domain.EnqueteStore = (*Store)(nil)
