package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/marcelojr/enquetes/internal/app/enquetes"
	"github.com/marcelojr/enquetes/internal/domain"
)

type MockEnqueteService struct {
	mock.Mock
}

func (m *MockEnqueteService) Criar(ctx context.Context, nova domain.NovaEnquete) (domain.Enquete, error) {
	args := m.Called(ctx, nova)
	return args.Get(0).(domain.Enquete), args.Error(1)
}

func (m *MockEnqueteService) BuscarPorID(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Enquete), args.Error(1)
}

func (m *MockEnqueteService) Listar(ctx context.Context, filtro domain.Filtro) ([]domain.Enquete, error) {
	args := m.Called(ctx, filtro)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Enquete), args.Error(1)
}

func (m *MockEnqueteService) Votar(ctx context.Context, voto domain.RegistroVoto) (domain.Enquete, error) {
	args := m.Called(ctx, voto)
	return args.Get(0).(domain.Enquete), args.Error(1)
}

func (m *MockEnqueteService) Atualizar(ctx context.Context, id domain.EnqueteID, mudanca domain.Atualizacao) (domain.Enquete, error) {
	args := m.Called(ctx, id, mudanca)
	return args.Get(0).(domain.Enquete), args.Error(1)
}

func (m *MockEnqueteService) Remover(ctx context.Context, id domain.EnqueteID) (domain.Enquete, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.Enquete), args.Error(1)
}

func novaAPIDeTeste(service domain.EnqueteService) *http.ServeMux {
	api := New(service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	mux := http.NewServeMux()
	api.Register(mux)
	return mux
}

func enqueteDeExemplo() domain.Enquete {
	criada := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	return domain.Enquete{
		ID:       1,
		Pergunta: "Qual a melhor cor?",
		Opcoes: []domain.Opcao{
			{EnqueteID: 1, ID: 1, Texto: "Vermelho"},
			{EnqueteID: 1, ID: 2, Texto: "Azul"},
		},
		Categoria: "diversao",
		Ativa:     true,
		CriadaEm:  criada,
	}
}

func TestListar_QuandoSemFiltros_DeveResponder200ComLista(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Listar", mock.Anything, domain.Filtro{}).
		Return([]domain.Enquete{enqueteDeExemplo()}, nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	var corpo []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &corpo))
	require.Len(t, corpo, 1)
	assert.Equal(t, float64(1), corpo[0]["id"])
	assert.Equal(t, "Qual a melhor cor?", corpo[0]["question"])
	assert.Equal(t, "diversao", corpo[0]["category"])
	assert.Equal(t, true, corpo[0]["isActive"])
	assert.NotContains(t, corpo[0], "updatedAt")
	mockService.AssertExpectations(t)
}

func TestListar_QuandoComFiltros_DevePropagarStatusCategoriaEBusca(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Listar", mock.Anything, domain.Filtro{
		Status:    domain.FiltroStatusAtivas,
		Categoria: "diversao",
		Busca:     "cor",
	}).Return([]domain.Enquete{}, nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls?status=active&category=diversao&search=cor", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
	mockService.AssertExpectations(t)
}

func TestListar_QuandoServicoDevolveNil_DeveResponderListaVazia(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Listar", mock.Anything, domain.Filtro{}).Return([]domain.Enquete(nil), nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestCriar_QuandoPayloadValido_DeveResponder201(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Criar", mock.Anything, domain.NovaEnquete{
		Pergunta:  "Qual a melhor cor?",
		Opcoes:    []string{"Vermelho", "Azul"},
		Categoria: "diversao",
	}).Return(enqueteDeExemplo(), nil)

	corpo := `{"question":"Qual a melhor cor?","options":["Vermelho","Azul"],"category":"diversao"}`
	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls", bytes.NewBufferString(corpo)))

	require.Equal(t, http.StatusCreated, rec.Code)

	var resposta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.Equal(t, float64(1), resposta["id"])
	opcoes := resposta["options"].([]any)
	require.Len(t, opcoes, 2)
	primeira := opcoes[0].(map[string]any)
	assert.Equal(t, float64(1), primeira["id"])
	assert.Equal(t, "Vermelho", primeira["text"])
	assert.Equal(t, float64(0), primeira["votes"])
	mockService.AssertExpectations(t)
}

func TestCriar_QuandoValidacaoFalha_DeveResponder400(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Criar", mock.Anything, mock.Anything).
		Return(domain.Enquete{}, fmt.Errorf("%w: pergunta obrigatoria", enquetes.ErrValidacao))

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls", bytes.NewBufferString(`{"question":"","options":[]}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resposta map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.Contains(t, resposta["error"], "pergunta obrigatoria")
}

func TestCriar_QuandoJSONInvalido_DeveResponder400SemChamarServico(t *testing.T) {
	mockService := new(MockEnqueteService)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls", bytes.NewBufferString("{nao é json")))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	mockService.AssertNotCalled(t, "Criar", mock.Anything, mock.Anything)
}

func TestBuscar_QuandoEnqueteExiste_DeveResponder200(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("BuscarPorID", mock.Anything, domain.EnqueteID(1)).Return(enqueteDeExemplo(), nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resposta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.Equal(t, "Qual a melhor cor?", resposta["question"])
}

func TestBuscar_QuandoEnqueteNaoExiste_DeveResponder404(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("BuscarPorID", mock.Anything, domain.EnqueteID(99)).
		Return(domain.Enquete{}, enquetes.ErrEnqueteNaoEncontrada)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/polls/99", nil))

	require.Equal(t, http.StatusNotFound, rec.Code)
	var resposta map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.NotEmpty(t, resposta["error"])
}

func TestVotar_QuandoVotoValido_DeveResponder200ComEnqueteAtualizada(t *testing.T) {
	atualizada := enqueteDeExemplo()
	atualizada.Opcoes[1].Votos = 1
	atualizada.TotalVotos = 1
	agora := time.Date(2026, 3, 10, 12, 5, 0, 0, time.UTC)
	atualizada.AtualizadaEm = &agora

	mockService := new(MockEnqueteService)
	mockService.On("Votar", mock.Anything, mock.MatchedBy(func(voto domain.RegistroVoto) bool {
		return voto.EnqueteID == 1 && voto.OpcaoID == 2 && voto.OrigemIP != ""
	})).Return(atualizada, nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/polls/1/vote", bytes.NewBufferString(`{"optionId":2}`))
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resposta map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.Equal(t, float64(1), resposta["totalVotes"])
	assert.Contains(t, resposta, "updatedAt")
	mockService.AssertExpectations(t)
}

func TestVotar_QuandoEnqueteEncerrada_DeveResponder400(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Votar", mock.Anything, mock.Anything).
		Return(domain.Enquete{}, enquetes.ErrEnqueteEncerrada)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls/1/vote", bytes.NewBufferString(`{"optionId":1}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVotar_QuandoOpcaoNaoExiste_DeveResponder400(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Votar", mock.Anything, mock.Anything).
		Return(domain.Enquete{}, enquetes.ErrOpcaoNaoEncontrada)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls/1/vote", bytes.NewBufferString(`{"optionId":99}`)))

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVotar_QuandoEnqueteNaoExiste_DeveResponder404(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Votar", mock.Anything, mock.Anything).
		Return(domain.Enquete{}, enquetes.ErrEnqueteNaoEncontrada)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/polls/42/vote", bytes.NewBufferString(`{"optionId":1}`)))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAtualizar_QuandoCampoOmitido_DeveEnviarPonteiroNil(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Atualizar", mock.Anything, domain.EnqueteID(1), mock.MatchedBy(func(mudanca domain.Atualizacao) bool {
		// isActive:false explícito chega como ponteiro; question omitida chega nil.
		return mudanca.Pergunta == nil && mudanca.Categoria == nil &&
			mudanca.Ativa != nil && !*mudanca.Ativa
	})).Return(enqueteDeExemplo(), nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/polls/1", bytes.NewBufferString(`{"isActive":false}`)))

	require.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestAtualizar_QuandoEnqueteNaoExiste_DeveResponder404(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Atualizar", mock.Anything, domain.EnqueteID(7), mock.Anything).
		Return(domain.Enquete{}, enquetes.ErrEnqueteNaoEncontrada)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/polls/7", bytes.NewBufferString(`{"question":"Nova?"}`)))

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRemover_QuandoEnqueteExiste_DeveResponder200ComMensagemEEnquete(t *testing.T) {
	mockService := new(MockEnqueteService)
	mockService.On("Remover", mock.Anything, domain.EnqueteID(1)).Return(enqueteDeExemplo(), nil)

	mux := novaAPIDeTeste(mockService)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/polls/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resposta struct {
		Mensagem string         `json:"message"`
		Enquete  map[string]any `json:"poll"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
	assert.NotEmpty(t, resposta.Mensagem)
	assert.Equal(t, float64(1), resposta.Enquete["id"])
	assert.Equal(t, "Qual a melhor cor?", resposta.Enquete["question"])
}

func TestRotas_QuandoCaminhoNaoCasa_DeveResponder404ComJSON(t *testing.T) {
	mockService := new(MockEnqueteService)
	mux := novaAPIDeTeste(mockService)

	casos := []struct {
		metodo  string
		caminho string
	}{
		{http.MethodGet, "/api/desconhecida"},
		{http.MethodGet, "/api/polls/abc"},
		{http.MethodPost, "/api/polls/1/outra"},
		{http.MethodPatch, "/api/polls/1"},
	}

	for _, caso := range casos {
		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, httptest.NewRequest(caso.metodo, caso.caminho, nil))

		require.Equalf(t, http.StatusNotFound, rec.Code, "%s %s", caso.metodo, caso.caminho)
		var resposta map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resposta))
		assert.Equal(t, "rota nao encontrada", resposta["error"])
	}
}

func TestColecao_QuandoMetodoNaoSuportado_DeveResponder405(t *testing.T) {
	mockService := new(MockEnqueteService)
	mux := novaAPIDeTeste(mockService)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/polls", nil))

	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
