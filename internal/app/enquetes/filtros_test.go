package enquetes

import (
	"reflect"
	"testing"

	"github.com/marcelojr/enquetes/internal/domain"
)

func coletaDeExemplo() []domain.Enquete {
	return []domain.Enquete{
		{ID: 1, Pergunta: "Qual a melhor cor?", Categoria: "diversao", Ativa: true},
		{ID: 2, Pergunta: "Melhor linguagem de backend?", Categoria: "tecnologia", Ativa: true},
		{ID: 3, Pergunta: "Qual COR combina com azul?", Categoria: "diversao", Ativa: false},
		{ID: 4, Pergunta: "Time do coracao?", Ativa: false},
	}
}

func idsDe(coleta []domain.Enquete) []domain.EnqueteID {
	ids := make([]domain.EnqueteID, len(coleta))
	for i, enquete := range coleta {
		ids[i] = enquete.ID
	}
	return ids
}

func TestFiltrarStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.FiltroStatus
		esperado []domain.EnqueteID
	}{
		{name: "ativas", status: domain.FiltroStatusAtivas, esperado: []domain.EnqueteID{1, 2}},
		{name: "encerradas", status: domain.FiltroStatusEncerradas, esperado: []domain.EnqueteID{3, 4}},
		{name: "vazio nao recorta", status: domain.FiltroStatusTodos, esperado: []domain.EnqueteID{1, 2, 3, 4}},
		{name: "desconhecido nao recorta", status: domain.FiltroStatus("banana"), esperado: []domain.EnqueteID{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resultado := FiltrarStatus(coletaDeExemplo(), tt.status)
			if !reflect.DeepEqual(idsDe(resultado), tt.esperado) {
				t.Fatalf("esperava IDs %v, veio %v", tt.esperado, idsDe(resultado))
			}
		})
	}
}

func TestFiltrarCategoria(t *testing.T) {
	resultado := FiltrarCategoria(coletaDeExemplo(), "diversao")
	if !reflect.DeepEqual(idsDe(resultado), []domain.EnqueteID{1, 3}) {
		t.Fatalf("esperava IDs [1 3], veio %v", idsDe(resultado))
	}

	// Comparação exata: diferença de caixa não casa.
	if resultado := FiltrarCategoria(coletaDeExemplo(), "Diversao"); len(resultado) != 0 {
		t.Fatalf("categoria com caixa diferente nao deveria casar, veio %v", idsDe(resultado))
	}

	if resultado := FiltrarCategoria(coletaDeExemplo(), ""); len(resultado) != 4 {
		t.Fatalf("categoria vazia nao recorta, veio %v", idsDe(resultado))
	}
}

func TestBuscarPorPergunta(t *testing.T) {
	// Busca por substring ignora caixa tanto do termo quanto da pergunta.
	resultado := BuscarPorPergunta(coletaDeExemplo(), "cor")
	if !reflect.DeepEqual(idsDe(resultado), []domain.EnqueteID{1, 3, 4}) {
		t.Fatalf("esperava IDs [1 3 4], veio %v", idsDe(resultado))
	}

	resultado = BuscarPorPergunta(coletaDeExemplo(), "  BACKEND ")
	if !reflect.DeepEqual(idsDe(resultado), []domain.EnqueteID{2}) {
		t.Fatalf("esperava IDs [2], veio %v", idsDe(resultado))
	}

	if resultado := BuscarPorPergunta(coletaDeExemplo(), "   "); len(resultado) != 4 {
		t.Fatalf("termo em branco nao recorta, veio %v", idsDe(resultado))
	}

	if resultado := BuscarPorPergunta(coletaDeExemplo(), "inexistente"); len(resultado) != 0 {
		t.Fatalf("termo sem match deveria devolver vazio, veio %v", idsDe(resultado))
	}
}

func TestAplicarFiltroEncadeado(t *testing.T) {
	filtro := domain.Filtro{
		Status:    domain.FiltroStatusAtivas,
		Categoria: "diversao",
		Busca:     "cor",
	}

	resultado := AplicarFiltro(coletaDeExemplo(), filtro)
	if !reflect.DeepEqual(idsDe(resultado), []domain.EnqueteID{1}) {
		t.Fatalf("esperava apenas a enquete 1, veio %v", idsDe(resultado))
	}
}

func TestCategoriasDistintas(t *testing.T) {
	coleta := []domain.Enquete{
		{ID: 1, Categoria: "diversao"},
		{ID: 2, Categoria: "tecnologia"},
		{ID: 3, Categoria: "diversao"},
		{ID: 4},
		{ID: 5, Categoria: "esporte"},
	}

	categorias := CategoriasDistintas(coleta)
	esperado := []string{"diversao", "tecnologia", "esporte"}
	if !reflect.DeepEqual(categorias, esperado) {
		t.Fatalf("esperava %v na ordem de aparicao, veio %v", esperado, categorias)
	}

	if categorias := CategoriasDistintas(nil); len(categorias) != 0 {
		t.Fatalf("colecao vazia deveria devolver lista vazia, veio %v", categorias)
	}
}
