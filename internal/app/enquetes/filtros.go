package enquetes

import (
	"strings"

	"github.com/marcelojr/enquetes/internal/domain"
)

// AplicarFiltro encadeia os recortes sobre um snapshot já carregado,
// preservando a ordem original da coleção.
func AplicarFiltro(coleta []domain.Enquete, filtro domain.Filtro) []domain.Enquete {
	resultado := FiltrarStatus(coleta, filtro.Status)
	resultado = FiltrarCategoria(resultado, filtro.Categoria)
	return BuscarPorPergunta(resultado, filtro.Busca)
}

func FiltrarStatus(coleta []domain.Enquete, status domain.FiltroStatus) []domain.Enquete {
	var manterAtivas bool
	switch status {
	case domain.FiltroStatusAtivas:
		manterAtivas = true
	case domain.FiltroStatusEncerradas:
		manterAtivas = false
	default:
		// Valores desconhecidos contam como "sem filtro".
		return coleta
	}

	resultado := make([]domain.Enquete, 0, len(coleta))
	for _, enquete := range coleta {
		if enquete.Ativa == manterAtivas {
			resultado = append(resultado, enquete)
		}
	}
	return resultado
}

// FiltrarCategoria compara a categoria por igualdade exata; filtro vazio não
// recorta nada.
func FiltrarCategoria(coleta []domain.Enquete, categoria string) []domain.Enquete {
	if categoria == "" {
		return coleta
	}

	resultado := make([]domain.Enquete, 0, len(coleta))
	for _, enquete := range coleta {
		if enquete.Categoria == categoria {
			resultado = append(resultado, enquete)
		}
	}
	return resultado
}

// BuscarPorPergunta faz busca por substring case-insensitive na pergunta.
// Termo vazio ou só espaços devolve o snapshot sem recorte.
func BuscarPorPergunta(coleta []domain.Enquete, termo string) []domain.Enquete {
	termo = strings.ToLower(strings.TrimSpace(termo))
	if termo == "" {
		return coleta
	}

	resultado := make([]domain.Enquete, 0, len(coleta))
	for _, enquete := range coleta {
		if strings.Contains(strings.ToLower(enquete.Pergunta), termo) {
			resultado = append(resultado, enquete)
		}
	}
	return resultado
}

// CategoriasDistintas lista as categorias não vazias presentes, na ordem em
// que aparecem na coleção, para alimentar os controles de filtro da UI.
func CategoriasDistintas(coleta []domain.Enquete) []string {
	vistas := make(map[string]bool, len(coleta))
	var categorias []string
	for _, enquete := range coleta {
		if enquete.Categoria == "" || vistas[enquete.Categoria] {
			continue
		}
		vistas[enquete.Categoria] = true
		categorias = append(categorias, enquete.Categoria)
	}
	return categorias
}
