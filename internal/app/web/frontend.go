package web

// Pacote web centraliza a camada de apresentação HTML (SSR) das enquetes.

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/marcelojr/enquetes/internal/app/enquetes"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/antifraude"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Frontend renderiza os templates Go responsáveis pelas telas de listagem,
// voto e criação de enquetes.
type Frontend struct {
	templates *template.Template
	service   domain.EnqueteService
}

// New carrega os templates embutidos e registra as dependências necessárias.
func New(service domain.EnqueteService) (*Frontend, error) {
	if service == nil {
		return nil, fmt.Errorf("frontend: serviço de enquetes inexistente")
	}
	tmpl, err := template.ParseFS(templateFS,
		"templates/layout.gohtml",
		"templates/lista.gohtml",
		"templates/nova.gohtml",
	)
	if err != nil {
		return nil, err
	}

	for _, name := range []string{"lista_body", "nova_body", "layout"} {
		if tmpl.Lookup(name) == nil {
			return nil, fmt.Errorf("frontend: template %s não encontrado", name)
		}
	}

	return &Frontend{templates: tmpl, service: service}, nil
}

// Register expõe as rotas HTML na mesma mux da API.
func (f *Frontend) Register(mux *http.ServeMux) {
	mux.HandleFunc("/", f.handleRoot)
	mux.HandleFunc("/enquetes", f.handleLista)
	mux.HandleFunc("/enquetes/nova", f.handleNova)
	mux.HandleFunc("/enquetes/votar", f.handleVotar)
	mux.HandleFunc("/enquetes/status", f.handleStatus)
	mux.HandleFunc("/enquetes/excluir", f.handleExcluir)
}

func (f *Frontend) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/enquetes", http.StatusFound)
}

func (f *Frontend) handleLista(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	data := listaPageData{
		Status:    query.Get("status"),
		Categoria: query.Get("category"),
		Busca:     query.Get("search"),
	}

	switch query.Get("ok") {
	case "voto":
		data.Message = "Voto registrado com sucesso!"
	case "criada":
		data.Message = "Enquete criada com sucesso!"
	}
	if erro := query.Get("erro"); erro != "" {
		data.Error = erro
	}

	// A coleção completa alimenta o dropdown de categorias e os contadores;
	// o recorte da listagem é aplicado em memória sobre o mesmo snapshot.
	coleta, err := f.service.Listar(ctx, domain.Filtro{})
	if err != nil {
		data.Error = "Não foi possível carregar as enquetes."
		f.render(w, "lista_body", data)
		return
	}

	data.Categorias = enquetes.CategoriasDistintas(coleta)
	data.TotalEnquetes = len(coleta)
	for _, enquete := range coleta {
		if enquete.Ativa {
			data.TotalAtivas++
		}
	}

	filtradas := enquetes.AplicarFiltro(coleta, domain.Filtro{
		Status:    domain.FiltroStatus(data.Status),
		Categoria: data.Categoria,
		Busca:     data.Busca,
	})
	data.Enquetes = makeEnqueteViews(filtradas)

	f.render(w, "lista_body", data)
}

func (f *Frontend) handleNova(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := novaPageData{}

	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			data.Error = "Não consegui ler os dados enviados. Tente novamente."
			f.render(w, "nova_body", data)
			return
		}

		nova := domain.NovaEnquete{
			Pergunta:  r.FormValue("pergunta"),
			Categoria: r.FormValue("categoria"),
		}
		for _, opcao := range r.Form["opcao"] {
			nova.Opcoes = append(nova.Opcoes, opcao)
		}

		data.Pergunta = nova.Pergunta
		data.Categoria = nova.Categoria
		data.Opcoes = nova.Opcoes

		enquete, err := f.service.Criar(ctx, nova)
		if err != nil {
			data.Error = translateError(err)
			f.render(w, "nova_body", data)
			return
		}

		http.Redirect(w, r, "/enquetes?ok=criada#enquete-"+strconv.FormatInt(int64(enquete.ID), 10), http.StatusSeeOther)
		return
	}

	// Formulário novo começa com duas opções em branco, o mínimo aceito.
	data.Opcoes = []string{"", ""}
	f.render(w, "nova_body", data)
}

func (f *Frontend) handleVotar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/enquetes", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		f.renderListaComErro(w, r, "Não consegui ler os dados enviados. Tente novamente.")
		return
	}

	enqueteID, err1 := strconv.ParseInt(r.FormValue("enquete_id"), 10, 64)
	opcaoID, err2 := strconv.ParseInt(r.FormValue("opcao_id"), 10, 64)
	if err1 != nil || err2 != nil {
		f.renderListaComErro(w, r, "Selecione uma opção para votar.")
		return
	}

	voto := domain.RegistroVoto{
		EnqueteID: domain.EnqueteID(enqueteID),
		OpcaoID:   domain.OpcaoID(opcaoID),
		OrigemIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	}

	if _, err := f.service.Votar(r.Context(), voto); err != nil {
		f.renderListaComErro(w, r, translateError(err))
		return
	}

	http.Redirect(w, r, "/enquetes?ok=voto", http.StatusSeeOther)
}

func (f *Frontend) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/enquetes", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		f.renderListaComErro(w, r, "Não consegui ler os dados enviados. Tente novamente.")
		return
	}

	enqueteID, err := strconv.ParseInt(r.FormValue("enquete_id"), 10, 64)
	if err != nil {
		f.renderListaComErro(w, r, "Enquete inválida.")
		return
	}
	ativa := r.FormValue("ativa") == "true"

	if _, err := f.service.Atualizar(r.Context(), domain.EnqueteID(enqueteID), domain.Atualizacao{Ativa: &ativa}); err != nil {
		f.renderListaComErro(w, r, translateError(err))
		return
	}

	http.Redirect(w, r, "/enquetes", http.StatusSeeOther)
}

func (f *Frontend) handleExcluir(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Redirect(w, r, "/enquetes", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		f.renderListaComErro(w, r, "Não consegui ler os dados enviados. Tente novamente.")
		return
	}

	enqueteID, err := strconv.ParseInt(r.FormValue("enquete_id"), 10, 64)
	if err != nil {
		f.renderListaComErro(w, r, "Enquete inválida.")
		return
	}

	if _, err := f.service.Remover(r.Context(), domain.EnqueteID(enqueteID)); err != nil {
		f.renderListaComErro(w, r, translateError(err))
		return
	}

	http.Redirect(w, r, "/enquetes", http.StatusSeeOther)
}

// renderListaComErro volta para a listagem com a mensagem de erro no topo.
func (f *Frontend) renderListaComErro(w http.ResponseWriter, r *http.Request, msg string) {
	http.Redirect(w, r, "/enquetes?erro="+url.QueryEscape(msg), http.StatusSeeOther)
}

func (f *Frontend) render(w http.ResponseWriter, tmpl string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	var content strings.Builder
	if err := f.templates.ExecuteTemplate(&content, tmpl, data); err != nil {
		http.Error(w, "erro ao montar a página", http.StatusInternalServerError)
		return
	}

	page := struct {
		Title   string
		Content template.HTML
	}{
		Title:   pageTitle(tmpl),
		Content: template.HTML(content.String()),
	}

	if err := f.templates.ExecuteTemplate(w, "layout", page); err != nil {
		http.Error(w, "erro ao renderizar página", http.StatusInternalServerError)
	}
}

func pageTitle(body string) string {
	switch body {
	case "lista_body":
		return "Enquetes"
	case "nova_body":
		return "Nova enquete"
	default:
		return "Enquetes"
	}
}

type listaPageData struct {
	Status        string
	Categoria     string
	Busca         string
	Categorias    []string
	TotalEnquetes int
	TotalAtivas   int
	Enquetes      []enqueteView
	Message       string
	Error         string
}

type enqueteView struct {
	ID         int64
	Pergunta   string
	Categoria  string
	TotalVotos int64
	Ativa      bool
	CriadaEm   string
	Opcoes     []opcaoView
}

type opcaoView struct {
	ID      int64
	Texto   string
	Votos   int64
	Percent string
}

type novaPageData struct {
	Pergunta  string
	Categoria string
	Opcoes    []string
	Error     string
}

func makeEnqueteViews(coleta []domain.Enquete) []enqueteView {
	views := make([]enqueteView, 0, len(coleta))
	for _, enquete := range coleta {
		view := enqueteView{
			ID:         int64(enquete.ID),
			Pergunta:   enquete.Pergunta,
			Categoria:  enquete.Categoria,
			TotalVotos: enquete.TotalVotos,
			Ativa:      enquete.Ativa,
			CriadaEm:   formatDateTime(enquete.CriadaEm),
		}
		for _, opcao := range enquete.Opcoes {
			view.Opcoes = append(view.Opcoes, opcaoView{
				ID:      int64(opcao.ID),
				Texto:   opcao.Texto,
				Votos:   opcao.Votos,
				Percent: formatPercent(percentual(opcao.Votos, enquete.TotalVotos)),
			})
		}
		views = append(views, view)
	}
	return views
}

func translateError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "Você atingiu o limite de votos por minuto. Aguarde um instante e tente novamente."
	case errors.Is(err, enquetes.ErrValidacao):
		return "Informe a pergunta e pelo menos duas opções de resposta."
	case errors.Is(err, enquetes.ErrEnqueteEncerrada):
		return "Essa enquete já foi encerrada para votação."
	case errors.Is(err, enquetes.ErrOpcaoNaoEncontrada):
		return "Não encontrei a opção informada."
	case errors.Is(err, enquetes.ErrEnqueteNaoEncontrada):
		return "Enquete não encontrada."
	default:
		return "Não foi possível concluir a operação. Tente novamente."
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		return host
	}
	return r.RemoteAddr
}

func percentual(votos, total int64) float64 {
	if total == 0 {
		return 0
	}
	return (float64(votos) / float64(total)) * 100
}

func formatPercent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("02/01/2006 15:04")
}
