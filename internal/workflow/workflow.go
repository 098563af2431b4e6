// Package workflow runs the document generation of one intake: create the
// client folder, generate each selected document, log the interview.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/backend"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/domain"
	"github.com/niltonmoura/lexmoura-atendimento-inicial/internal/metrics"
)

type State string

const (
	StateIdle           State = "idle"
	StateCreatingFolder State = "creating-folder"
	StateGenerating     State = "generating"
	StateLogging        State = "logging"
	StateDone           State = "done"
	StateError          State = "error"
)

const (
	msgStarting       = "Iniciando processo..."
	msgCreatingFolder = "Criando pasta do cliente no Google Drive..."
	msgLogging        = "Registrando atendimento na planilha..."
	msgDone           = "Processo concluído!"

	folderPercentage  = 10
	loggingPercentage = 95
)

var (
	ErrNoDocuments   = errors.New("Por favor, selecione ao menos um documento para gerar.")
	ErrNotConfigured = errors.New("A URL do backend não foi configurada. Defina BACKEND_URL no ambiente.")
)

// MissingFieldsError lists required intake fields left blank.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return "Preencha os campos obrigatórios: " + strings.Join(e.Fields, ", ")
}

// Backend is the part of the backend client the workflow drives.
type Backend interface {
	Configured() bool
	CreateFolder(ctx context.Context, nome, cpf string) (string, error)
	GenerateDocument(ctx context.Context, req backend.GenerateDocument) (string, error)
	LogInterview(ctx context.Context, entry backend.LogInterview) error
}

// Update is handed to the observer on every state or progress change.
type Update struct {
	State    State           `json:"state"`
	Progress domain.Progress `json:"progress"`
}

type Observer func(Update)

// Outcome is the final result of a run. Err is set only in StateError.
// LogErr carries a failed interview log; it never changes State or Results.
type Outcome struct {
	State    State
	FolderID string
	Results  []domain.GeneratedFile
	Err      error
	LogErr   error
}

type Orchestrator struct {
	backend Backend
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Orchestrator)

func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func New(b Backend, opts ...Option) (*Orchestrator, error) {
	if b == nil {
		return nil, errors.New("backend is required")
	}
	o := &Orchestrator{backend: b, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Validate applies the entry rules. It never touches the network.
func (o *Orchestrator) Validate(intake domain.IntakeRecord, docs []domain.DocumentType) error {
	if len(docs) == 0 {
		return ErrNoDocuments
	}
	if missing := intake.MissingRequired(); len(missing) > 0 {
		return &MissingFieldsError{Fields: missing}
	}
	return nil
}

// Percentage is the progress shown while document i (zero based) of total-1
// documents is generated. total counts the documents plus the logging step.
func Percentage(i, total int) int {
	return folderPercentage + int(math.Round(float64(i+1)/float64(total)*80))
}

// Run executes the workflow strictly in order. A folder failure aborts the
// run; a document failure is recorded and the loop goes on.
func (o *Orchestrator) Run(ctx context.Context, intake domain.IntakeRecord, docs []domain.DocumentType, observe Observer) Outcome {
	p := &progress{observe: observe}

	if err := o.Validate(intake, docs); err != nil {
		return o.fail(p, err)
	}

	p.report(StateIdle, msgStarting, 0)
	if !o.backend.Configured() {
		return o.fail(p, ErrNotConfigured)
	}

	p.report(StateCreatingFolder, msgCreatingFolder, folderPercentage)
	folderID, err := o.backend.CreateFolder(ctx, intake.Nome, intake.CPF)
	if err != nil {
		return o.fail(p, fmt.Errorf("Falha ao criar pasta do cliente: %w", err))
	}

	total := len(docs) + 1
	results := make([]domain.GeneratedFile, 0, len(docs))
	for i, doc := range docs {
		p.report(StateGenerating, fmt.Sprintf("Gerando %s...", doc.Label), Percentage(i, total))

		url, err := o.backend.GenerateDocument(ctx, backend.GenerateDocument{
			TemplateID:   doc.TemplateID,
			FolderID:     folderID,
			DocumentName: fmt.Sprintf("%s - %s", doc.Label, intake.Nome),
			Data:         intake,
		})
		if err != nil {
			o.logger.Warn("document generation failed", "document", doc.ID, "error", err)
			results = append(results, domain.GeneratedFile{Name: doc.Label, Error: "Falha ao gerar: " + err.Error()})
		} else {
			results = append(results, domain.GeneratedFile{Name: doc.Label, URL: url})
		}
		o.metrics.ObserveDocument(err == nil)
	}

	p.report(StateLogging, msgLogging, loggingPercentage)
	logErr := o.backend.LogInterview(ctx, backend.LogInterview{
		Nome:         intake.Nome,
		CPF:          intake.CPF,
		AreaJuridica: string(intake.AreaJuridica),
	})
	if logErr != nil {
		o.logger.Warn("interview log failed", "cpf", intake.CPF, "error", logErr)
	}

	p.report(StateDone, msgDone, 100)
	o.metrics.ObserveRun(string(StateDone))

	return Outcome{
		State:    StateDone,
		FolderID: folderID,
		Results:  results,
		LogErr:   logErr,
	}
}

func (o *Orchestrator) fail(p *progress, err error) Outcome {
	p.report(StateError, p.last.Message, p.last.Percentage)
	o.metrics.ObserveRun(string(StateError))
	return Outcome{State: StateError, Err: err, Results: []domain.GeneratedFile{}}
}

// progress keeps the reported percentage non-decreasing.
type progress struct {
	observe Observer
	last    domain.Progress
}

func (p *progress) report(state State, message string, percentage int) {
	if percentage < p.last.Percentage {
		percentage = p.last.Percentage
	}
	p.last = domain.Progress{Message: message, Percentage: percentage}
	if p.observe != nil {
		p.observe(Update{State: state, Progress: p.last})
	}
}
