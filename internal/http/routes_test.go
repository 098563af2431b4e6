package http

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/config"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/logging"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/storage"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/workflow"
)

// fakeBackend answers the automation backend actions and records them.
type fakeBackend struct {
	mu      sync.Mutex
	actions []string
	release chan struct{}
	respond func(action string, body map[string]any) (int, string)
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	body := map[string]any{}
	if r.Method == http.MethodPost {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		action, _ = body["action"].(string)
	}

	f.mu.Lock()
	f.actions = append(f.actions, action)
	release := f.release
	f.mu.Unlock()

	if release != nil && action == "criar_pasta" {
		<-release
	}

	status, payload := f.respond(action, body)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, payload)
}

func (f *fakeBackend) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.actions...)
}

func defaultResponses(action string, body map[string]any) (int, string) {
	switch action {
	case "criar_pasta":
		return http.StatusOK, `{"success":true,"data":{"folderId":"F1"}}`
	case "gerar_documento":
		if body["templateId"] == "tpl-bad" {
			return http.StatusOK, `{"success":false,"error":"Template não encontrado"}`
		}
		return http.StatusOK, `{"success":true,"data":{"pdfUrl":"https://drive/` + body["templateId"].(string) + `"}}`
	case "log_entrevista":
		return http.StatusOK, `{"success":true}`
	case "listar_entrevistas":
		return http.StatusOK, `{"success":true,"data":[
			{"id":1,"nome":"Ana","cpf":"123.456.789-00","area_juridica":"Previdenciário","data_cadastro":"2024-03-01"},
			{"id":2,"nome":"Beatriz","cpf":"987.654.321-00","area_juridica":"Trabalhista","data_cadastro":"2024-05-10"}
		]}`
	case "listar_visitas":
		return http.StatusOK, `{"success":true,"data":[
			{"id":1,"nome":"Rui","bairro":"Centro","status":"agendada"},
			{"id":2,"nome":"Léa","bairro":"Aldeota","status":"concluida"},
			{"id":3,"nome":"Ivo","bairro":"","status":"agendada"}
		]}`
	}
	return http.StatusBadRequest, `{"success":false,"error":"ação desconhecida"}`
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func setupTestServer(t *testing.T, backendURL string, opts ...Option) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Config{
		Port:           "8080",
		BackendURL:     backendURL,
		AllowedOrigins: []string{"http://localhost:5173"},
		MaxBodyBytes:   64 * 1024,
		DocumentTemplates: map[string]string{
			"procuracao":          "tpl-procuracao",
			"contrato_honorarios": "tpl-bad",
			"peticao_inicial":     "tpl-peticao",
		},
	}

	opts = append([]Option{WithLogger(logging.Discard()), WithRegistry(prometheus.NewRegistry())}, opts...)
	srv, err := NewServer(cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(srv.api.Wait)
	return srv
}

func withFakeBackend(t *testing.T) (*Server, *fakeBackend) {
	t.Helper()
	fake := &fakeBackend{respond: defaultResponses}
	backendSrv := httptest.NewServer(fake)
	t.Cleanup(backendSrv.Close)
	return setupTestServer(t, backendSrv.URL), fake
}

func do(t *testing.T, srv *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func createIntake(t *testing.T, srv *Server) storage.Session {
	t.Helper()
	rec := do(t, srv, http.MethodPost, "/api/intakes", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	return decode[storage.Session](t, rec)
}

func waitDone(t *testing.T, srv *Server, id string) progressView {
	t.Helper()
	var view progressView
	require.Eventually(t, func() bool {
		req := httptest.NewRequest(http.MethodGet, "/api/intakes/"+id+"/progress", nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		view = progressView{}
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			return false
		}
		return !view.Running
	}, 5*time.Second, 10*time.Millisecond)
	return view
}

func TestHealthHandler(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)

	rec := do(t, srv, http.MethodGet, "/api/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, false, body["backendConfigured"])
}

func TestNavigationResolvesFragment(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)

	rec := do(t, srv, http.MethodGet, "/api/navigation?fragment=%23visitas", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[map[string]json.RawMessage](t, rec)
	assert.Contains(t, string(body["state"]), `"page":"visitas"`)
	assert.NotContains(t, body, "quickActions")

	rec = do(t, srv, http.MethodGet, "/api/navigation?fragment=%23nada", "")
	body = decode[map[string]json.RawMessage](t, rec)
	assert.Contains(t, string(body["state"]), `"page":"home"`)
	assert.Contains(t, body, "quickActions")
}

func TestIntakeEditing(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	rec := do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[storage.Session](t, rec)
	assert.Equal(t, "Maria", updated.Intake.Nome)
	assert.Equal(t, "Fortaleza", updated.Intake.Cidade)

	rec = do(t, srv, http.MethodPost, base+"/family", "")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPatch, base+"/family/1", `{"nome":"João","grauParentesco":"Filho","renda":"0,00"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, http.MethodDelete, base+"/family/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	removal := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, "false", string(removal["removed"]))

	rec = do(t, srv, http.MethodPatch, base+"/family/9", `{"nome":"X"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, base, "")
	got := decode[storage.Session](t, rec)
	require.Len(t, got.Intake.ComposicaoFamiliar, 2)
	assert.Equal(t, "Titular", got.Intake.ComposicaoFamiliar[0].GrauParentesco)
	assert.Equal(t, "João", got.Intake.ComposicaoFamiliar[1].Nome)

	rec = do(t, srv, http.MethodPost, base+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[storage.Session](t, rec).Intake.Nome)
}

func TestUnknownIntake(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)

	rec := do(t, srv, http.MethodGet, "/api/intakes/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, decode[map[string]string](t, rec)["error"])
}

func TestSelectDocumentsRejectsUnknownIDs(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)
	session := createIntake(t, srv)

	rec := do(t, srv, http.MethodPut, "/api/intakes/"+session.ID+"/documents", `{"selected":["nao_existe"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPut, "/api/intakes/"+session.ID+"/documents", `{"selected":["peticao_inicial","procuracao"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"selected":["peticao_inicial","procuracao"]}`, rec.Body.String())
}

func TestGenerateEntryRules(t *testing.T) {
	srv, fake := withFakeBackend(t)
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	rec := do(t, srv, http.MethodPost, base+"/generate", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, workflow.ErrNoDocuments.Error(), decode[map[string]string](t, rec)["error"])

	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["procuracao"]}`)
	rec = do(t, srv, http.MethodPost, base+"/generate", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Nome Completo")

	assert.Empty(t, fake.calls())
}

func TestGenerateRunsWorkflow(t *testing.T) {
	srv, fake := withFakeBackend(t)
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["peticao_inicial","contrato_honorarios","procuracao"]}`)

	rec := do(t, srv, http.MethodPost, base+"/generate", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	view := waitDone(t, srv, session.ID)

	assert.Equal(t, workflow.StateDone, view.State)
	assert.Equal(t, 100, view.Progress.Percentage)
	assert.Equal(t, "Processo concluído!", view.Progress.Message)
	require.Len(t, view.Results, 3)
	assert.Equal(t, resultView{Name: "Procuração", URL: "https://drive/tpl-procuracao", Action: "Abrir PDF"}, view.Results[0])
	assert.Equal(t, "Falhou", view.Results[1].Action)
	assert.Equal(t, "Falha ao gerar: Template não encontrado", view.Results[1].Error)
	assert.Equal(t, "Abrir PDF", view.Results[2].Action)

	assert.Equal(t, []string{
		"criar_pasta",
		"gerar_documento",
		"gerar_documento",
		"gerar_documento",
		"log_entrevista",
	}, fake.calls())
}

func TestGenerateConflictWhileRunning(t *testing.T) {
	srv, fake := withFakeBackend(t)
	fake.release = make(chan struct{})
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["procuracao"]}`)

	rec := do(t, srv, http.MethodPost, base+"/generate", "")
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = do(t, srv, http.MethodPost, base+"/generate", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	rec = do(t, srv, http.MethodPatch, base, `{"nome":"Outra"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(fake.release)
	view := waitDone(t, srv, session.ID)
	assert.Equal(t, workflow.StateDone, view.State)
}

func TestGenerateFolderFailure(t *testing.T) {
	srv, fake := withFakeBackend(t)
	fake.respond = func(action string, body map[string]any) (int, string) {
		if action == "criar_pasta" {
			return http.StatusInternalServerError, "boom"
		}
		return defaultResponses(action, body)
	}
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["procuracao"]}`)
	require.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, base+"/generate", "").Code)

	view := waitDone(t, srv, session.ID)

	assert.Equal(t, workflow.StateError, view.State)
	assert.Contains(t, view.ErrorMessage, "Falha ao criar pasta do cliente: Erro na comunicação com o servidor: 500")
	assert.Empty(t, view.Results)
	assert.Equal(t, []string{"criar_pasta"}, fake.calls())
}

func TestGenerateUnconfiguredBackend(t *testing.T) {
	var hits atomic.Int32
	transport := roundTripFunc(func(*http.Request) (*http.Response, error) {
		hits.Add(1)
		return nil, errors.New("unexpected call")
	})
	srv := setupTestServer(t, config.BackendURLPlaceholder, WithBackendHTTPClient(&http.Client{Transport: transport}))
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["procuracao"]}`)
	require.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, base+"/generate", "").Code)

	view := waitDone(t, srv, session.ID)
	assert.Equal(t, workflow.StateError, view.State)
	assert.Equal(t, workflow.ErrNotConfigured.Error(), view.ErrorMessage)
	assert.Zero(t, hits.Load())
}

func TestInterviewsFiltering(t *testing.T) {
	srv, _ := withFakeBackend(t)

	rec := do(t, srv, http.MethodGet, "/api/interviews?search=987654", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Items []struct {
			Item  map[string]any `json:"item"`
			Badge string         `json:"badge"`
			Data  string         `json:"dataFormatada"`
		} `json:"items"`
		Total int      `json:"total"`
		Areas []string `json:"areas"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, 2, body.Total)
	assert.Equal(t, []string{"Todas", "Trabalhista", "Previdenciário"}, body.Areas)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "Beatriz", body.Items[0].Item["nome"])
	assert.Equal(t, "10/05/2024", body.Items[0].Data)
}

func TestVisitsGrouping(t *testing.T) {
	srv, _ := withFakeBackend(t)

	rec := do(t, srv, http.MethodGet, "/api/visits", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Groups []struct {
			Bairro string `json:"bairro"`
		} `json:"groups"`
		Stats map[string]int `json:"stats"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	require.Len(t, body.Groups, 3)
	assert.Equal(t, "Aldeota", body.Groups[0].Bairro)
	assert.Equal(t, "Centro", body.Groups[1].Bairro)
	assert.Equal(t, "Sem bairro definido", body.Groups[2].Bairro)
	assert.Equal(t, 2, body.Stats["agendadas"])
	assert.Equal(t, 1, body.Stats["concluidas"])
}

func TestListsShowBackendError(t *testing.T) {
	srv, fake := withFakeBackend(t)
	fake.respond = func(string, map[string]any) (int, string) {
		return http.StatusOK, `{"success":false,"error":"Aba 'Visitas' não encontrada"}`
	}

	rec := do(t, srv, http.MethodGet, "/api/visits", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Aba 'Visitas' não encontrada", decode[map[string]string](t, rec)["error"])

	unconfigured := setupTestServer(t, "")
	rec = do(t, unconfigured, http.MethodGet, "/api/interviews", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFichaPDF(t *testing.T) {
	srv := setupTestServer(t, config.BackendURLPlaceholder)
	session := createIntake(t, srv)

	rec := do(t, srv, http.MethodGet, "/api/intakes/"+session.ID+"/ficha.pdf", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := withFakeBackend(t)
	do(t, srv, http.MethodGet, "/api/visits", "")

	rec := do(t, srv, http.MethodGet, "/api/metrics", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `atendimento_backend_requests_total{action="listar_visitas",outcome="ok"} 1`)
}

func TestListsFallBackWhenBackendGivesNoReason(t *testing.T) {
	srv, fake := withFakeBackend(t)
	fake.respond = func(action string, _ map[string]any) (int, string) {
		if action == "listar_visitas" {
			return http.StatusOK, `{"success":false}`
		}
		return http.StatusOK, `{"success":true}`
	}

	rec := do(t, srv, http.MethodGet, "/api/visits", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, msgVisitsFailed, decode[map[string]string](t, rec)["error"])

	rec = do(t, srv, http.MethodGet, "/api/interviews", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, msgInterviewsFailed, decode[map[string]string](t, rec)["error"])
}

func TestDeleteIntake(t *testing.T) {
	srv, fake := withFakeBackend(t)
	fake.release = make(chan struct{})
	session := createIntake(t, srv)
	base := "/api/intakes/" + session.ID

	do(t, srv, http.MethodPatch, base, `{"nome":"Maria","cpf":"111.222.333-44"}`)
	do(t, srv, http.MethodPut, base+"/documents", `{"selected":["procuracao"]}`)
	require.Equal(t, http.StatusAccepted, do(t, srv, http.MethodPost, base+"/generate", "").Code)

	rec := do(t, srv, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	close(fake.release)
	waitDone(t, srv, session.ID)

	rec = do(t, srv, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, srv, http.MethodGet, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(t, srv, http.MethodDelete, base, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
