// Pacote sqlstore implementa o store de enquetes sobre GORM (SQLite ou
// Postgres), mantendo o mesmo contrato de coleção inteira do backend JSON:
// Carregar devolve tudo, Salvar substitui tudo em uma única transação.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// Abrir cria a conexão GORM para o driver configurado. Logs somente em WARN
// para evitar ruído.
func Abrir(ctx context.Context, driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "sqlite":
		dialector = sqlite.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("sqlstore: driver desconhecido: %q", driver)
	}

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: abrir conexao: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlstore: obter sql.DB: %w", err)
	}

	// Ping inicial garante que a instância está acessível antes de devolver a conexão.
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctxPing); err != nil {
		return nil, fmt.Errorf("sqlstore: ping falhou: %w", err)
	}

	return gormDB, nil
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Carregar(ctx context.Context) ([]domain.Enquete, error) {
	var coleta []domain.Enquete
	err := s.db.WithContext(ctx).
		Preload("Opcoes", func(db *gorm.DB) *gorm.DB {
			// Ordem das opções é parte do modelo: 1..N como foram criadas.
			return db.Order("id ASC")
		}).
		Order("id ASC").
		Find(&coleta).Error
	if err != nil {
		return nil, fmt.Errorf("sqlstore: carregar colecao: %w", err)
	}

	if coleta == nil {
		coleta = []domain.Enquete{}
	}
	return coleta, nil
}

// Salvar troca a coleção inteira dentro de uma transação; ou o novo estado é
// confirmado por completo ou nada muda.
func (s *Store) Salvar(ctx context.Context, coleta []domain.Enquete) error {
	inicio := time.Now()

	copia := make([]domain.Enquete, len(coleta))
	for i, enquete := range coleta {
		copia[i] = enquete
		copia[i].Opcoes = make([]domain.Opcao, len(enquete.Opcoes))
		for j, opcao := range enquete.Opcoes {
			opcao.EnqueteID = enquete.ID
			copia[i].Opcoes[j] = opcao
		}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM opcoes").Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM enquetes").Error; err != nil {
			return err
		}
		if len(copia) == 0 {
			return nil
		}
		return tx.Create(&copia).Error
	})
	if err != nil {
		return fmt.Errorf("sqlstore: salvar colecao: %w", err)
	}

	metrics.ObserveSalvarDuration(time.Since(inicio).Seconds())
	return nil
}

var _ domain.EnqueteStore = (*Store)(nil)
