// Pacote httpapi expõe a API REST de enquetes e traduz requisições HTTP para
// o serviço de mutação e consulta.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/marcelojr/enquetes/internal/app/enquetes"
	"github.com/marcelojr/enquetes/internal/domain"
	"github.com/marcelojr/enquetes/internal/platform/antifraude"
	"github.com/marcelojr/enquetes/internal/platform/ids"
	"github.com/marcelojr/enquetes/internal/platform/metrics"
)

// API empacota os handlers HTTP ligados ao serviço de enquetes e ao logger.
type API struct {
	service domain.EnqueteService
	logger  *slog.Logger
}

func New(service domain.EnqueteService, logger *slog.Logger) *API {
	return &API{service: service, logger: logger}
}

func (a *API) Register(mux *http.ServeMux) {
	// Rotas centralizadas para facilitar testes e reuso em servidores diferentes.
	mux.HandleFunc("/healthz", a.handleHealthz)
	mux.HandleFunc("/api/polls", a.comAcesso(a.handleColecao))
	mux.HandleFunc("/api/polls/", a.comAcesso(a.handleDetalhes))
	mux.HandleFunc("/api/", a.comAcesso(a.handleRotaDesconhecida))
}

// comAcesso marca cada requisição com um ULID e registra o log de acesso.
func (a *API) comAcesso(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inicio := time.Now()
		requestID := ids.NewULID()
		w.Header().Set("X-Request-ID", requestID)

		next(w, r)

		a.logger.Info("requisicao atendida",
			"request_id", requestID,
			"metodo", r.Method,
			"caminho", r.URL.Path,
			"duracao_ms", time.Since(inicio).Milliseconds(),
		)
	}
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (a *API) handleColecao(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		a.listarEnquetes(w, r)
	case http.MethodPost:
		a.criarEnquete(w, r)
	default:
		responderJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "metodo nao suportado"})
	}
}

func (a *API) handleDetalhes(w http.ResponseWriter, r *http.Request) {
	partes := strings.Split(strings.TrimPrefix(r.URL.Path, "/api/polls/"), "/")
	if len(partes) == 0 || partes[0] == "" {
		a.handleRotaDesconhecida(w, r)
		return
	}

	id, err := strconv.ParseInt(partes[0], 10, 64)
	if err != nil {
		a.handleRotaDesconhecida(w, r)
		return
	}
	enqueteID := domain.EnqueteID(id)

	switch {
	case len(partes) == 1 && r.Method == http.MethodGet:
		a.buscarEnquete(w, r, enqueteID)
	case len(partes) == 1 && r.Method == http.MethodPut:
		a.atualizarEnquete(w, r, enqueteID)
	case len(partes) == 1 && r.Method == http.MethodDelete:
		a.removerEnquete(w, r, enqueteID)
	case len(partes) == 2 && partes[1] == "vote" && r.Method == http.MethodPost:
		a.votar(w, r, enqueteID)
	default:
		a.handleRotaDesconhecida(w, r)
	}
}

func (a *API) handleRotaDesconhecida(w http.ResponseWriter, r *http.Request) {
	responderJSON(w, http.StatusNotFound, errorResponse{Error: "rota nao encontrada"})
}

func (a *API) listarEnquetes(w http.ResponseWriter, r *http.Request) {
	filtro := domain.Filtro{
		Status:    domain.FiltroStatus(r.URL.Query().Get("status")),
		Categoria: r.URL.Query().Get("category"),
		Busca:     r.URL.Query().Get("search"),
	}

	resultado, err := a.service.Listar(r.Context(), filtro)
	if err != nil {
		metrics.ObserveRequest("listar", "error")
		a.logger.Error("erro ao listar enquetes", "err", err)
		responderErro(w, err)
		return
	}

	if resultado == nil {
		resultado = []domain.Enquete{}
	}

	metrics.ObserveRequest("listar", "ok")
	responderJSON(w, http.StatusOK, resultado)
}

func (a *API) buscarEnquete(w http.ResponseWriter, r *http.Request, id domain.EnqueteID) {
	enquete, err := a.service.BuscarPorID(r.Context(), id)
	if err != nil {
		metrics.ObserveRequest("buscar", statusLabel(err))
		responderErro(w, err)
		return
	}

	metrics.ObserveRequest("buscar", "ok")
	responderJSON(w, http.StatusOK, enquete)
}

type criarEnqueteRequest struct {
	Pergunta  string   `json:"question"`
	Opcoes    []string `json:"options"`
	Categoria string   `json:"category"`
}

func (a *API) criarEnquete(w http.ResponseWriter, r *http.Request) {
	var req criarEnqueteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRequest("criar", "invalid_payload")
		a.logger.Warn("payload invalido ao criar enquete", "err", err)
		responderJSON(w, http.StatusBadRequest, errorResponse{Error: "payload invalido"})
		return
	}

	enquete, err := a.service.Criar(r.Context(), domain.NovaEnquete{
		Pergunta:  req.Pergunta,
		Opcoes:    req.Opcoes,
		Categoria: req.Categoria,
	})
	if err != nil {
		metrics.ObserveRequest("criar", statusLabel(err))
		a.logger.Warn("falha ao criar enquete", "err", err)
		responderErro(w, err)
		return
	}

	metrics.ObserveRequest("criar", "ok")
	a.logger.Info("enquete criada", "enquete", enquete.ID)
	responderJSON(w, http.StatusCreated, enquete)
}

type votoRequest struct {
	OpcaoID domain.OpcaoID `json:"optionId"`
}

func (a *API) votar(w http.ResponseWriter, r *http.Request, id domain.EnqueteID) {
	var req votoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRequest("votar", "invalid_payload")
		a.logger.Warn("payload invalido ao registrar voto", "err", err)
		responderJSON(w, http.StatusBadRequest, errorResponse{Error: "payload invalido"})
		return
	}

	voto := domain.RegistroVoto{
		EnqueteID: id,
		OpcaoID:   req.OpcaoID,
		OrigemIP:  clientIP(r),
		UserAgent: r.UserAgent(),
	}

	enquete, err := a.service.Votar(r.Context(), voto)
	if err != nil {
		status := statusLabel(err)
		metrics.ObserveRequest("votar", status)
		a.logger.Warn("falha ao registrar voto", "err", err, "enquete", id, "opcao", req.OpcaoID, "status", status)
		responderErro(w, err)
		return
	}

	metrics.ObserveRequest("votar", "ok")
	metrics.IncVotoAceito()
	a.logger.Info("voto registrado", "enquete", id, "opcao", req.OpcaoID)
	responderJSON(w, http.StatusOK, enquete)
}

type atualizarEnqueteRequest struct {
	Pergunta  *string `json:"question"`
	Categoria *string `json:"category"`
	Ativa     *bool   `json:"isActive"`
}

func (a *API) atualizarEnquete(w http.ResponseWriter, r *http.Request, id domain.EnqueteID) {
	var req atualizarEnqueteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		metrics.ObserveRequest("atualizar", "invalid_payload")
		a.logger.Warn("payload invalido ao atualizar enquete", "err", err)
		responderJSON(w, http.StatusBadRequest, errorResponse{Error: "payload invalido"})
		return
	}

	// Chave ausente no JSON vira ponteiro nil (manter valor); false e ""
	// explícitos chegam como ponteiros válidos e são aplicados.
	enquete, err := a.service.Atualizar(r.Context(), id, domain.Atualizacao{
		Pergunta:  req.Pergunta,
		Categoria: req.Categoria,
		Ativa:     req.Ativa,
	})
	if err != nil {
		metrics.ObserveRequest("atualizar", statusLabel(err))
		a.logger.Warn("falha ao atualizar enquete", "err", err, "enquete", id)
		responderErro(w, err)
		return
	}

	metrics.ObserveRequest("atualizar", "ok")
	a.logger.Info("enquete atualizada", "enquete", id)
	responderJSON(w, http.StatusOK, enquete)
}

type removerResponse struct {
	Mensagem string         `json:"message"`
	Enquete  domain.Enquete `json:"poll"`
}

func (a *API) removerEnquete(w http.ResponseWriter, r *http.Request, id domain.EnqueteID) {
	removida, err := a.service.Remover(r.Context(), id)
	if err != nil {
		metrics.ObserveRequest("remover", statusLabel(err))
		a.logger.Warn("falha ao remover enquete", "err", err, "enquete", id)
		responderErro(w, err)
		return
	}

	metrics.ObserveRequest("remover", "ok")
	a.logger.Info("enquete removida", "enquete", id)
	responderJSON(w, http.StatusOK, removerResponse{
		Mensagem: "enquete removida",
		Enquete:  removida,
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func responderJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func responderErro(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, enquetes.ErrValidacao):
		status = http.StatusBadRequest
	case errors.Is(err, enquetes.ErrEnqueteEncerrada):
		status = http.StatusBadRequest
	case errors.Is(err, enquetes.ErrOpcaoNaoEncontrada):
		status = http.StatusBadRequest
	case errors.Is(err, enquetes.ErrEnqueteNaoEncontrada):
		status = http.StatusNotFound
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		status = http.StatusTooManyRequests
	}

	responderJSON(w, status, errorResponse{Error: err.Error()})
}

func statusLabel(err error) string {
	switch {
	case errors.Is(err, antifraude.ErrRateLimitExceeded):
		return "rate_limited"
	case errors.Is(err, enquetes.ErrValidacao):
		return "invalid"
	case errors.Is(err, enquetes.ErrEnqueteEncerrada):
		return "closed"
	case errors.Is(err, enquetes.ErrOpcaoNaoEncontrada):
		return "option_not_found"
	case errors.Is(err, enquetes.ErrEnqueteNaoEncontrada):
		return "not_found"
	default:
		return "error"
	}
}

func clientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		partes := strings.Split(xf, ",")
		return strings.TrimSpace(partes[0])
	}
	return strings.Split(r.RemoteAddr, ":")[0]
}
