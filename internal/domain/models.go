package domain

import "time"

type (
	EnqueteID int64
	OpcaoID   int64
)

// Enquete agrega a pergunta, as opções e os contadores derivados de voto.
// As tags json seguem o contrato da API; as tags gorm atendem o store SQL.
type Enquete struct {
	ID           EnqueteID  `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Pergunta     string     `json:"question" gorm:"column:pergunta;type:text;not null"`
	Categoria    string     `json:"category" gorm:"column:categoria;type:text"`
	Opcoes       []Opcao    `json:"options" gorm:"foreignKey:EnqueteID;references:ID;constraint:OnDelete:CASCADE"`
	TotalVotos   int64      `json:"totalVotes" gorm:"column:total_votos;not null"`
	Ativa        bool       `json:"isActive" gorm:"column:ativa;not null"`
	CriadaEm     time.Time  `json:"createdAt" gorm:"column:criada_em"`
	AtualizadaEm *time.Time `json:"updatedAt,omitempty" gorm:"column:atualizada_em"`
}

// Opcao é uma alternativa de resposta; o ID é sequencial (1..N) dentro da
// enquete e nunca é reatribuído depois da criação.
type Opcao struct {
	EnqueteID EnqueteID `json:"-" gorm:"column:enquete_id;primaryKey;autoIncrement:false"`
	ID        OpcaoID   `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Texto     string    `json:"text" gorm:"column:texto;type:text;not null"`
	Votos     int64     `json:"votes" gorm:"column:votos;not null"`
}

// SomaVotosOpcoes recalcula o total a partir das opções; precisa bater com
// TotalVotos depois de qualquer mutação confirmada.
func (e Enquete) SomaVotosOpcoes() int64 {
	var total int64
	for _, opcao := range e.Opcoes {
		total += opcao.Votos
	}
	return total
}

func (Enquete) TableName() string { return "enquetes" }

func (Opcao) TableName() string { return "opcoes" }
